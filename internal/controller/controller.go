package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/sunveil-core/internal/cover"
	"github.com/nerrad567/sunveil-core/internal/infrastructure/config"
	"github.com/nerrad567/sunveil-core/internal/infrastructure/mqtt"
)

// coverRuntime is the in-memory state for one configured cover.
type coverRuntime struct {
	cfg      config.CoverConfig
	model    cover.Model
	calc     cover.Calculator
	limits   cover.PositionLimits
	override *OverrideTracker

	// lastSent is the last dispatched calculated value (before inversion).
	lastSent   float64
	lastSentAt time.Time
	hasSent    bool
}

// Controller runs the Sunveil evaluation loop.
//
// It evaluates every configured cover on a fixed interval, publishes
// diagnostics for each evaluation, and dispatches gated position commands
// over MQTT. Create with New, then Start.
type Controller struct {
	cfg  config.ControllerConfig
	site config.SiteConfig
	qos  byte

	client  MQTTClient
	solar   SolarProvider
	topics  mqtt.Topics
	sensors *SensorStore

	repo    Repository
	metrics MetricsWriter
	logger  Logger

	mu      sync.Mutex
	covers  map[string]*coverRuntime
	order   []string
	started time.Time
	running bool

	// kick coalesces sensor-driven re-evaluation requests between ticks.
	kick chan struct{}

	// now is replaceable for tests.
	now func() time.Time
}

// New creates a controller from the loaded configuration.
//
// Parameters:
//   - cfg: Full application configuration (covers, controller, site)
//   - client: MQTT client for commands, diagnostics and subscriptions
//   - solar: Solar position provider for the site
//
// Returns:
//   - *Controller: Controller ready to Start
//   - error: ErrNoCovers, or ErrUnknownCoverType for a bad cover config
func New(cfg *config.Config, client MQTTClient, solar SolarProvider) (*Controller, error) {
	if len(cfg.Covers) == 0 {
		return nil, ErrNoCovers
	}

	c := &Controller{
		cfg:     cfg.Controller,
		site:    cfg.Site,
		qos:     byte(cfg.MQTT.QoS),
		client:  client,
		solar:   solar,
		sensors: NewSensorStore(),
		logger:  noopLogger{},
		covers:  make(map[string]*coverRuntime, len(cfg.Covers)),
		kick:    make(chan struct{}, 1),
		now:     time.Now,
	}

	for _, cc := range cfg.Covers {
		rt, err := buildCover(cc, cfg.Controller.CommandGrace)
		if err != nil {
			return nil, fmt.Errorf("cover %s: %w", cc.ID, err)
		}
		c.covers[cc.ID] = rt
		c.order = append(c.order, cc.ID)
	}

	return c, nil
}

// SetLogger sets the logger for controller events.
func (c *Controller) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	c.logger = logger
}

// SetRepository sets the history repository. Nil disables persistence.
func (c *Controller) SetRepository(repo Repository) {
	c.repo = repo
}

// SetMetrics sets the telemetry writer. Nil disables telemetry.
func (c *Controller) SetMetrics(metrics MetricsWriter) {
	c.metrics = metrics
}

// Sensors exposes the sensor store, mainly for tests and diagnostics.
func (c *Controller) Sensors() *SensorStore {
	return c.sensors
}

// buildCover maps one cover config onto the geometric model, the
// variant calculator and the trackers.
func buildCover(cc config.CoverConfig, commandGrace time.Duration) (*coverRuntime, error) {
	model := cover.Model{
		Window: cover.WindowGeometry{
			Azimuth:      cc.Window.Azimuth,
			FOVLeft:      cc.Window.FOVLeft,
			FOVRight:     cc.Window.FOVRight,
			MinElevation: cc.Window.MinElevation,
			MaxElevation: cc.Window.MaxElevation,
		},
		Defaults: cover.Defaults{
			Position:       cc.Defaults.Position,
			SunsetPosition: cc.Defaults.SunsetPosition,
			SunsetOffset:   cc.Defaults.SunsetOffset,
			SunriseOffset:  cc.Defaults.SunriseOffset,
		},
	}
	if cc.Window.BlindSpot != nil {
		model.Window.BlindSpot = &cover.BlindSpot{
			Left:         cc.Window.BlindSpot.Left,
			Right:        cc.Window.BlindSpot.Right,
			MaxElevation: cc.Window.BlindSpot.MaxElevation,
		}
	}

	var calc cover.Calculator
	switch cover.Type(cc.Type) {
	case cover.TypeVertical:
		calc = cover.VerticalCalculator{Geometry: cover.VerticalGeometry{
			WindowHeight: cc.Geometry.WindowHeight,
			Distance:     cc.Geometry.Distance,
			WindowDepth:  cc.Geometry.WindowDepth,
		}}
	case cover.TypeHorizontal:
		calc = cover.HorizontalCalculator{Geometry: cover.HorizontalGeometry{
			VerticalGeometry: cover.VerticalGeometry{
				WindowHeight: cc.Geometry.WindowHeight,
				Distance:     cc.Geometry.Distance,
				WindowDepth:  cc.Geometry.WindowDepth,
			},
			AwningLength: cc.Geometry.AwningLength,
			AwningAngle:  cc.Geometry.AwningAngle,
		}}
	case cover.TypeTilt:
		calc = cover.TiltCalculator{Geometry: cover.TiltGeometry{
			SlatDepth:    cc.Geometry.SlatDepth,
			SlatDistance: cc.Geometry.SlatDistance,
			Mode:         cover.TiltMode(cc.Geometry.TiltMode),
		}}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCoverType, cc.Type)
	}

	return &coverRuntime{
		cfg:   cc,
		model: model,
		calc:  calc,
		limits: cover.PositionLimits{
			MinPosition:   cc.Limits.MinPosition,
			MaxPosition:   cc.Limits.MaxPosition,
			EnforceAlways: cc.Limits.EnforceAlways,
		},
		override: NewOverrideTracker(cc.Control, commandGrace),
	}, nil
}

// Start subscribes to sensor and cover state topics, runs an immediate
// evaluation, and launches the periodic loop. The loop stops when ctx is
// cancelled.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	c.running = true
	c.started = c.now()
	c.mu.Unlock()

	if err := c.client.Subscribe(c.topics.AllSensorStates(), c.qos, c.handleSensorState); err != nil {
		return fmt.Errorf("subscribing to sensor states: %w", err)
	}
	if err := c.client.Subscribe(c.topics.AllCoverStates(), c.qos, c.handleCoverState); err != nil {
		return fmt.Errorf("subscribing to cover states: %w", err)
	}

	c.logger.Info("controller started",
		"covers", len(c.covers),
		"interval", c.cfg.Interval,
		"startup_grace", c.cfg.StartupGrace,
	)

	// First evaluation straight away; the startup grace keeps it from
	// moving anything, but diagnostics flow immediately.
	c.EvaluateAll(ctx)

	go c.run(ctx)
	return nil
}

// run is the periodic evaluation loop.
func (c *Controller) run(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("controller stopping")
			return
		case <-ticker.C:
			c.EvaluateAll(ctx)
		case <-c.kick:
			c.EvaluateAll(ctx)
		}
	}
}

// EvaluateAll evaluates every cover once at the current instant.
func (c *Controller) EvaluateAll(ctx context.Context) {
	now := c.now()
	sun := c.solar.Position(now)
	times := c.solar.Times(now)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.WriteSolarPosition(c.site.ID, sun)
	}

	for _, id := range c.order {
		c.evaluateCover(ctx, c.covers[id], sun, times, now)
	}
}

// evaluateCover runs one cover through the pipeline and dispatches the
// result if the gates allow it. Caller holds c.mu.
func (c *Controller) evaluateCover(ctx context.Context, rt *coverRuntime, sun cover.SolarAngle, times cover.SolarTimes, now time.Time) {
	var climate *cover.ClimateContext
	if rt.cfg.Climate != nil {
		climate = c.sensors.Climate(*rt.cfg.Climate)
		if climate == nil {
			c.logger.Debug("inside temperature unavailable, using normal strategy",
				"cover", rt.cfg.ID,
			)
		}
	}

	result := cover.Evaluate(rt.model, rt.calc, rt.limits, cover.Input{
		Sun:     sun,
		Times:   times,
		Now:     now,
		Climate: climate,
	})

	dispatch, reason := c.shouldDispatch(rt, result, now)

	c.publishEvaluation(rt.cfg.ID, result, dispatch, reason, now)

	if c.metrics != nil {
		c.metrics.WriteEvaluation(rt.cfg.ID, result)
	}
	if c.repo != nil {
		if err := c.repo.RecordEvaluation(ctx, EvaluationRecord{
			CoverID:      rt.cfg.ID,
			EvaluatedAt:  now,
			Rule:         string(result.Rule),
			Value:        result.Value,
			Gamma:        result.Gamma,
			Elevation:    result.Elevation,
			SafetyMargin: result.SafetyMargin,
			Flags:        result.Flags,
		}); err != nil {
			c.logger.Error("recording evaluation failed", "cover", rt.cfg.ID, "error", err)
		}
	}

	if dispatch {
		c.dispatch(ctx, rt, result, now)
	}
}

// shouldDispatch applies the gating rules to a calculated value.
func (c *Controller) shouldDispatch(rt *coverRuntime, result cover.CalculatedPosition, now time.Time) (bool, string) {
	if now.Sub(c.started) < c.cfg.StartupGrace {
		return false, "startup_grace"
	}
	if rt.override.Active(now) {
		return false, "override_active"
	}
	if !rt.hasSent {
		return true, "initial"
	}

	delta := result.Value - rt.lastSent
	if delta < 0 {
		delta = -delta
	}
	if delta == 0 {
		return false, "unchanged"
	}

	// Moves to or from a special position ignore the gates: fully open,
	// fully closed and the configured fallbacks are exact targets.
	if !rt.isSpecial(result.Value) && !rt.isSpecial(rt.lastSent) {
		if delta < rt.cfg.Control.MinPositionDelta {
			return false, "below_position_delta"
		}
		if now.Sub(rt.lastSentAt) < rt.cfg.Control.MinTimeDelta {
			return false, "below_time_delta"
		}
	}

	return true, "dispatch"
}

// isSpecial reports whether a value is one of the cover's exact targets.
func (rt *coverRuntime) isSpecial(value float64) bool {
	switch value {
	case 0, 100, rt.cfg.Defaults.Position, rt.cfg.Defaults.SunsetPosition:
		return true
	}
	return false
}

// dispatch converts a calculated value into the cover's command form and
// publishes it. Caller holds c.mu.
func (c *Controller) dispatch(ctx context.Context, rt *coverRuntime, result cover.CalculatedPosition, now time.Time) {
	cmd := cover.MakeCommand(result.Value, rt.cfg.Inverse, rt.cfg.PositionCapable, rt.cfg.Threshold)
	commandID := uuid.New().String()

	var topic string
	var payload any
	if cmd.Service == cover.ServiceNone {
		topic = c.topics.CoverSet(rt.cfg.ID)
		payload = SetMessage{CommandID: commandID, Position: cmd.Value}
	} else {
		topic = c.topics.CoverCommand(rt.cfg.ID)
		payload = CommandMessage{CommandID: commandID, Service: string(cmd.Service)}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		c.logger.Error("marshalling command failed", "cover", rt.cfg.ID, "error", err)
		return
	}
	if err := c.client.Publish(topic, data, c.qos, false); err != nil {
		c.logger.Error("publishing command failed", "cover", rt.cfg.ID, "topic", topic, "error", err)
		return
	}

	rt.lastSent = result.Value
	rt.lastSentAt = now
	rt.hasSent = true
	rt.override.RecordCommand(cmd.Value, now)

	c.logger.Info("command dispatched",
		"cover", rt.cfg.ID,
		"value", cmd.Value,
		"service", string(cmd.Service),
		"rule", string(result.Rule),
	)

	if c.metrics != nil {
		c.metrics.WriteCommand(rt.cfg.ID, cmd.Value, string(cmd.Service))
	}
	if c.repo != nil {
		if err := c.repo.RecordCommand(ctx, CommandRecord{
			ID:      commandID,
			CoverID: rt.cfg.ID,
			SentAt:  now,
			Value:   cmd.Value,
			Service: string(cmd.Service),
			Rule:    string(result.Rule),
		}); err != nil {
			c.logger.Error("recording command failed", "cover", rt.cfg.ID, "error", err)
		}
	}
}

// publishEvaluation publishes per-cover diagnostics. Failures are logged
// and otherwise ignored; diagnostics never block control.
func (c *Controller) publishEvaluation(coverID string, result cover.CalculatedPosition, dispatched bool, reason string, now time.Time) {
	msg := EvaluationMessage{
		CoverID:      coverID,
		Rule:         string(result.Rule),
		Value:        result.Value,
		Gamma:        result.Gamma,
		Elevation:    result.Elevation,
		SafetyMargin: result.SafetyMargin,
		Flags: FlagsMessage{
			SunValid:       result.Flags.SunValid,
			ValidElevation: result.Flags.ValidElevation,
			InBlindSpot:    result.Flags.InBlindSpot,
			SunsetPeriod:   result.Flags.SunsetPeriod,
			EdgeCase:       result.Flags.EdgeCase,
		},
		Dispatched:  dispatched,
		Reason:      reason,
		EvaluatedAt: now.UTC(),
	}

	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error("marshalling evaluation failed", "cover", coverID, "error", err)
		return
	}
	if err := c.client.Publish(c.topics.CoreEvaluation(coverID), data, c.qos, true); err != nil {
		c.logger.Warn("publishing evaluation failed", "cover", coverID, "error", err)
	}
}

// handleSensorState stores an incoming sensor reading.
func (c *Controller) handleSensorState(topic string, payload []byte) error {
	sensorID, err := idFromTopic(topic)
	if err != nil {
		return err
	}
	if err := c.sensors.Update(sensorID, payload, c.now()); err != nil {
		c.logger.Warn("ignoring sensor payload", "sensor", sensorID, "error", err)
		return nil
	}

	// A changed reading may flip a climate rule before the next tick.
	select {
	case c.kick <- struct{}{}:
	default:
	}
	return nil
}

// handleCoverState inspects a cover state report for manual overrides.
func (c *Controller) handleCoverState(topic string, payload []byte) error {
	coverID, err := idFromTopic(topic)
	if err != nil {
		return err
	}

	c.mu.Lock()
	rt, ok := c.covers[coverID]
	c.mu.Unlock()
	if !ok {
		c.logger.Debug("state report for unconfigured cover", "cover", coverID)
		return nil
	}

	position, moving, err := decodeStatePayload(payload)
	if err != nil {
		c.logger.Warn("ignoring cover state payload", "cover", coverID, "error", err)
		return nil
	}
	if position == nil {
		return nil
	}

	now := c.now()
	ov := rt.override.ObserveState(*position, moving, now)
	if ov == nil {
		return nil
	}

	c.logger.Warn("manual override detected",
		"cover", coverID,
		"reported", ov.Reported,
		"expected", ov.Expected,
	)

	msg := OverrideMessage{
		CoverID:    coverID,
		Reported:   ov.Reported,
		Expected:   ov.Expected,
		DetectedAt: ov.DetectedAt.UTC(),
		ExpiresAt:  ov.ExpiresAt.UTC(),
	}
	if data, err := json.Marshal(msg); err == nil {
		if err := c.client.Publish(c.topics.CoreOverride(coverID), data, c.qos, false); err != nil {
			c.logger.Warn("publishing override failed", "cover", coverID, "error", err)
		}
	}

	if c.repo != nil {
		if err := c.repo.RecordOverride(context.Background(), OverrideRecord{
			CoverID:    coverID,
			DetectedAt: ov.DetectedAt,
			ExpiresAt:  ov.ExpiresAt,
			Reported:   ov.Reported,
			Expected:   ov.Expected,
		}); err != nil {
			c.logger.Error("recording override failed", "cover", coverID, "error", err)
		}
	}

	return nil
}

// ClearOverride cancels an active manual override for the cover.
func (c *Controller) ClearOverride(coverID string) error {
	c.mu.Lock()
	rt, ok := c.covers[coverID]
	c.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCover, coverID)
	}
	rt.override.Clear()
	c.logger.Info("override cleared", "cover", coverID)
	return nil
}

// decodeStatePayload parses a cover state report. Accepts the JSON object
// form and a bare numeric position.
func decodeStatePayload(payload []byte) (*float64, bool, error) {
	trimmed := strings.TrimSpace(string(payload))
	if trimmed == "" {
		return nil, false, fmt.Errorf("empty payload")
	}

	if strings.HasPrefix(trimmed, "{") {
		var msg StateMessage
		if err := json.Unmarshal([]byte(trimmed), &msg); err != nil {
			return nil, false, fmt.Errorf("decoding state: %w", err)
		}
		return msg.Position, msg.Moving, nil
	}

	var value float64
	if err := json.Unmarshal([]byte(trimmed), &value); err != nil {
		return nil, false, fmt.Errorf("decoding state: %w", err)
	}
	return &value, false, nil
}

// idFromTopic extracts the entity ID from a sunveil/{kind}/{id}/state topic.
func idFromTopic(topic string) (string, error) {
	parts := strings.Split(topic, "/")
	if len(parts) < 4 || parts[2] == "" {
		return "", fmt.Errorf("unexpected topic shape: %q", topic)
	}
	return parts[2], nil
}
