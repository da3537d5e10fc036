package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/jgoulah/wattlens/internal/analyzer"
	"github.com/jgoulah/wattlens/internal/config"
	"github.com/jgoulah/wattlens/pkg/models"
)

const (
	publishQoS     = 1
	publishTimeout = 10 * time.Second
)

// Publisher sends cluster results to an MQTT broker as retained messages
type Publisher struct {
	client      mqtt.Client
	topicPrefix string
	logger      *zap.Logger
}

// New connects to the broker described by cfg
func New(cfg config.MQTTConfig, logger *zap.Logger) (*Publisher, error) {
	if !cfg.Enabled {
		return nil, errors.New("MQTT publishing is not enabled in config")
	}
	if cfg.Broker == "" {
		return nil, errors.New("MQTT broker address is required when enabled")
	}

	// Configure MQTT client options
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", cfg.Broker))
	opts.SetClientID(cfg.GetClientID())
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(10 * time.Second)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	// Create and connect client
	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(publishTimeout) {
		return nil, fmt.Errorf("connecting to MQTT broker %s: timed out", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connecting to MQTT broker: %w", err)
	}

	return NewWithClient(client, cfg.GetTopicPrefix(), logger), nil
}

// NewWithClient wraps an already connected client
func NewWithClient(client mqtt.Client, topicPrefix string, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{
		client:      client,
		topicPrefix: topicPrefix,
		logger:      logger.Named("publisher"),
	}
}

// AssignmentPayload is the retained message for one household and method
type AssignmentPayload struct {
	HouseholdID string `json:"household_id"`
	ClusterID   int    `json:"cluster_id"`
	Method      string `json:"cluster_method"`
	IsAnomaly   bool   `json:"is_anomaly"`
	Label       string `json:"label"`
	Color       string `json:"color"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// SummaryPayload is the retained per-method overview message
type SummaryPayload struct {
	Method string `json:"cluster_method"`
	analyzer.Summary
}

// AssignmentTopic returns the topic for one household's result under a method
func (p *Publisher) AssignmentTopic(a models.ClusterAssignment) string {
	return fmt.Sprintf("%s/%s/%s", p.topicPrefix, a.HouseholdID, a.Method)
}

// SummaryTopic returns the topic carrying the overview for a method
func (p *Publisher) SummaryTopic(method models.ClusterMethod) string {
	return fmt.Sprintf("%s/summary/%s", p.topicPrefix, method)
}

// AssignmentLister reads stored assignments
type AssignmentLister interface {
	ListAssignments(ctx context.Context, filter models.AssignmentFilter) ([]models.ClusterAssignment, error)
}

// PublishAssignments sends every assignment and then one summary per method
// present. Summaries are retained, so each is built from the method's full
// stored set in store, never from the possibly filtered assignments. It
// returns how many assignment messages were delivered; a failed message is
// logged and skipped.
func (p *Publisher) PublishAssignments(ctx context.Context, store AssignmentLister, assignments []models.ClusterAssignment) (int, error) {
	published := 0
	var methods []models.ClusterMethod
	seen := make(map[models.ClusterMethod]bool)
	var failures []error

	for _, a := range assignments {
		if !seen[a.Method] {
			seen[a.Method] = true
			methods = append(methods, a.Method)
		}

		payload := AssignmentPayload{
			HouseholdID: a.HouseholdID,
			ClusterID:   a.ClusterID,
			Method:      string(a.Method),
			IsAnomaly:   a.IsAnomaly,
			Label:       analyzer.Label(a),
			Color:       analyzer.ClusterColor(a.ClusterID),
		}
		if !a.UpdatedAt.IsZero() {
			payload.UpdatedAt = a.UpdatedAt.Format(time.RFC3339)
		}

		if err := p.publish(p.AssignmentTopic(a), payload); err != nil {
			p.logger.Warn("publish failed", zap.String("household_id", a.HouseholdID), zap.Error(err))
			failures = append(failures, err)
			continue
		}
		published++
	}

	for _, method := range methods {
		if err := p.PublishSummary(ctx, store, method); err != nil {
			p.logger.Warn("summary publish failed", zap.String("method", string(method)), zap.Error(err))
			failures = append(failures, err)
		}
	}

	return published, errors.Join(failures...)
}

// PublishSummary sends the retained overview for every stored assignment of method
func (p *Publisher) PublishSummary(ctx context.Context, store AssignmentLister, method models.ClusterMethod) error {
	all, err := store.ListAssignments(ctx, models.AssignmentFilter{Method: method})
	if err != nil {
		return fmt.Errorf("listing %s assignments: %w", method, err)
	}
	summary := SummaryPayload{Method: string(method), Summary: analyzer.Summarize(all)}
	return p.publish(p.SummaryTopic(method), summary)
}

func (p *Publisher) publish(topic string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	token := p.client.Publish(topic, publishQoS, true, body)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publishing to %s: timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publishing to %s: %w", topic, err)
	}

	p.logger.Debug("published", zap.String("topic", topic))
	return nil
}

// Close disconnects from the MQTT broker
func (p *Publisher) Close() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}
