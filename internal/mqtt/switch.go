package mqtt

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// BoilerSwitch drives a relay over MQTT. Commands go to CommandTopic as
// plain "ON"/"OFF"; the relay reports on StateTopic with a retained
// message, which lets the controller resync after a restart.
type BoilerSwitch struct {
	client       Client
	commandTopic string
	stateTopic   string
}

// NewBoilerSwitch wires a switch to the given topics.
func NewBoilerSwitch(client Client, commandTopic, stateTopic string) *BoilerSwitch {
	return &BoilerSwitch{
		client:       client,
		commandTopic: commandTopic,
		stateTopic:   stateTopic,
	}
}

// TurnOn commands the relay on.
func (s *BoilerSwitch) TurnOn() error {
	return s.client.Publish(s.commandTopic, []byte("ON"), false)
}

// TurnOff commands the relay off.
func (s *BoilerSwitch) TurnOff() error {
	return s.client.Publish(s.commandTopic, []byte("OFF"), false)
}

// ReadState waits up to timeout for the retained state message and reports
// whether the relay is on. known is false when no retained state arrived,
// for example on a fresh broker.
func (s *BoilerSwitch) ReadState(timeout time.Duration) (on bool, known bool, err error) {
	var (
		once sync.Once
		got  = make(chan string, 1)
	)

	if err := s.client.Subscribe(s.stateTopic, func(_ string, payload []byte) {
		once.Do(func() { got <- string(payload) })
	}); err != nil {
		return false, false, fmt.Errorf("subscribe state topic: %w", err)
	}

	select {
	case raw := <-got:
		switch strings.ToUpper(strings.TrimSpace(raw)) {
		case "ON":
			return true, true, nil
		case "OFF":
			return false, true, nil
		default:
			return false, false, fmt.Errorf("unrecognized relay state %q", raw)
		}
	case <-time.After(timeout):
		return false, false, nil
	}
}
