package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/theonefromthesky/smart-heating/internal/logger"
	"github.com/theonefromthesky/smart-heating/internal/mqtt"
)

// IngressTopics names the broker topics the controller listens on.
type IngressTopics struct {
	IndoorTemp  string
	OutdoorTemp string
	Schedule    string
}

// Ingress bridges broker messages into the thermostat entry points.
// Malformed payloads are logged and dropped, never fatal.
type Ingress struct {
	thermo Thermostat
	log    *logger.Logger
}

func NewIngress(thermo Thermostat, log *logger.Logger) *Ingress {
	return &Ingress{thermo: thermo, log: log}
}

// schedulePayload is the wire format of the schedule topic.
type schedulePayload struct {
	State  string `json:"state"`             // "on" | "off"
	NextOn string `json:"next_on,omitempty"` // RFC3339, absent or null if unknown
}

// Bind subscribes the ingress handlers on the given client.
func (i *Ingress) Bind(client mqtt.Client, topics IngressTopics) error {
	if topics.IndoorTemp != "" {
		if err := client.Subscribe(topics.IndoorTemp, i.onIndoorTemp); err != nil {
			return fmt.Errorf("subscribe %s: %w", topics.IndoorTemp, err)
		}
	}
	if topics.OutdoorTemp != "" {
		if err := client.Subscribe(topics.OutdoorTemp, i.onOutdoorTemp); err != nil {
			return fmt.Errorf("subscribe %s: %w", topics.OutdoorTemp, err)
		}
	}
	if topics.Schedule != "" {
		if err := client.Subscribe(topics.Schedule, i.onSchedule); err != nil {
			return fmt.Errorf("subscribe %s: %w", topics.Schedule, err)
		}
	}
	return nil
}

func (i *Ingress) onIndoorTemp(topic string, payload []byte) {
	temp, err := parseTemperature(payload)
	if err != nil {
		i.log.Warnw("dropping indoor sample", "topic", topic, "payload", string(payload), "error", err)
		return
	}
	if err := i.thermo.HandleTemperature(context.Background(), temp); err != nil {
		i.log.Errorw("indoor sample rejected", "temp_c", temp, "error", err)
	}
}

func (i *Ingress) onOutdoorTemp(topic string, payload []byte) {
	temp, err := parseTemperature(payload)
	if err != nil {
		i.log.Warnw("dropping outdoor sample", "topic", topic, "payload", string(payload), "error", err)
		return
	}
	if err := i.thermo.HandleOutdoorTemperature(context.Background(), temp); err != nil {
		i.log.Errorw("outdoor sample rejected", "temp_c", temp, "error", err)
	}
}

func (i *Ingress) onSchedule(topic string, payload []byte) {
	var p schedulePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		i.log.Warnw("dropping schedule signal", "topic", topic, "payload", string(payload), "error", err)
		return
	}

	upd := ScheduleUpdate{State: p.State}
	if p.NextOn != "" {
		nextOn, err := time.Parse(time.RFC3339, p.NextOn)
		if err != nil {
			i.log.Warnw("dropping schedule signal", "topic", topic, "next_on", p.NextOn, "error", err)
			return
		}
		upd.NextOn = nextOn
	}

	if err := i.thermo.HandleSchedule(context.Background(), upd); err != nil {
		i.log.Warnw("schedule signal rejected", "state", p.State, "error", err)
	}
}

// parseTemperature decodes a plain decimal Celsius payload.
func parseTemperature(payload []byte) (float64, error) {
	raw := strings.TrimSpace(string(payload))
	temp, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("not a temperature: %q", raw)
	}
	return temp, nil
}
