package calculator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go-chi-calculator/internal/handlers"
	"go-chi-calculator/internal/observability"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// tracer is the calculator's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("calculator")

var operatorNames = map[string]byte{
	"add":      '+',
	"subtract": '-',
	"multiply": '*',
	"divide":   '/',
}

// Handler serves the keypad of the single active calculation. Key events
// are applied one at a time in arrival order.
type Handler struct {
	mu   sync.Mutex
	calc *Calculator
}

// NewHandler returns a Handler around a fresh calculator session.
func NewHandler() *Handler {
	return &Handler{calc: NewCalculator()}
}

// ---------------------------------------------------------------------------
// Handlers — keypad events
// ---------------------------------------------------------------------------

// Display handles GET /calculator/display
func (h *Handler) Display(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	resp := h.snapshot()
	h.mu.Unlock()

	handlers.WriteJSON(w, http.StatusOK, resp)
}

// Digit handles POST /calculator/digit/{digit}
func (h *Handler) Digit(w http.ResponseWriter, r *http.Request) {
	param := chi.URLParam(r, "digit")
	h.handleKey(w, r, "digit", func(_ context.Context, c *Calculator) (string, error) {
		if len(param) != 1 || !isDigit(param[0]) {
			return "", fmt.Errorf("%w: digit %q", ErrUnknownKey, param)
		}
		return c.Digit(param[0]), nil
	})
}

// Operator handles POST /calculator/operator/{op} where op is one of add,
// subtract, multiply or divide.
func (h *Handler) Operator(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "op")
	h.handleKey(w, r, "operator", func(_ context.Context, c *Calculator) (string, error) {
		op, ok := operatorNames[name]
		if !ok {
			return "", fmt.Errorf("%w: operator %q", ErrUnknownKey, name)
		}
		return c.Operator(op), nil
	})
}

// Dot handles POST /calculator/dot
func (h *Handler) Dot(w http.ResponseWriter, r *http.Request) {
	h.handleKey(w, r, "dot", func(_ context.Context, c *Calculator) (string, error) {
		return c.Dot(), nil
	})
}

// Clear handles POST /calculator/clear
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	h.handleKey(w, r, "clear", func(_ context.Context, c *Calculator) (string, error) {
		return c.Clear(), nil
	})
}

// Equal handles POST /calculator/equal. An evaluation failure is not an
// HTTP error, the display switches to ErrorText.
func (h *Handler) Equal(w http.ResponseWriter, r *http.Request) {
	h.handleKey(w, r, "equal", equal)
}

// handleKey is the shared implementation for all single-key endpoints.
// Invalid keys are rejected with 400; evaluation errors are recorded on the
// span and in the error counter but still answered with the display.
func (h *Handler) handleKey(w http.ResponseWriter, r *http.Request, keyName string, press func(context.Context, *Calculator) (string, error)) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)

	ctx, span := tracer.Start(ctx, fmt.Sprintf("calculator.key.%s", keyName),
		trace.WithAttributes(
			attribute.String("calculator.key", keyName),
			attribute.String("request.id", observability.RequestIDFromContext(ctx)),
		),
	)
	defer span.End()

	h.mu.Lock()
	defer h.mu.Unlock()

	display, err := press(ctx, h.calc)
	if errors.Is(err, ErrUnknownKey) {
		observability.RecordError(ctx, span, logger, errorCounter, keyName, "unknown key", err, http.StatusBadRequest, w)
		return
	}

	keystrokeCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("key", keyName)))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "evaluation failed")
		errorCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", keyName)))
		logger.Warn("evaluation failed",
			zap.String("expression", h.calc.Expression()),
			zap.Error(err),
		)
	} else {
		span.SetStatus(codes.Ok, "")
	}

	span.SetAttributes(attribute.String("calculator.display", display))

	logger.Debug("key applied",
		zap.String("key", keyName),
		zap.String("display", display),
	)

	handlers.WriteJSON(w, http.StatusOK, h.snapshot())
}

// equal evaluates the session's expression, recording one span event and
// one counter increment per reduction.
func equal(ctx context.Context, c *Calculator) (string, error) {
	span := trace.SpanFromContext(ctx)

	start := time.Now()
	display, err := c.EqualFunc(func(red Reduction) {
		recordReduction(ctx, span, red)
	})
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0 // ms

	evaluationDuration.Record(ctx, elapsed)

	if result, ok := c.Result(); ok && err == nil {
		resultGauge.Record(ctx, result.InexactFloat64())
	}

	return display, err
}

// Press handles POST /calculator/press: applies a sequence of keys,
// creating a child span for every key.
func (h *Handler) Press(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "calculator.press",
		trace.WithAttributes(
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	var req PressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "press", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	if req.Keys == "" {
		observability.RecordError(ctx, span, logger, errorCounter, "press", "no keys provided", errors.New("keys is empty"), http.StatusBadRequest, w)
		return
	}

	for i, k := range []rune(req.Keys) {
		if !ValidKey(k) {
			err := fmt.Errorf("%w: %q at position %d", ErrUnknownKey, k, i)
			observability.RecordError(ctx, span, logger, errorCounter, "press", "unknown key", err, http.StatusBadRequest, w)
			return
		}
	}

	span.SetAttributes(attribute.Int("press.keys_count", len([]rune(req.Keys))))

	h.mu.Lock()
	defer h.mu.Unlock()

	steps := make([]PressStep, 0, len(req.Keys))

	for i, k := range []rune(req.Keys) {
		// --- Child span per key ---
		keyCtx, keySpan := tracer.Start(ctx, fmt.Sprintf("calculator.press.key.%d", i),
			trace.WithAttributes(
				attribute.Int("press.key.index", i),
				attribute.String("press.key", string(k)),
			),
		)

		var (
			display string
			err     error
		)
		if k == '=' {
			display, err = equal(keyCtx, h.calc)
		} else {
			display, err = h.calc.Press(k)
		}

		keystrokeCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("key", keyKind(k))))

		if err != nil {
			keySpan.RecordError(err)
			keySpan.SetStatus(codes.Error, "evaluation failed")

			span.RecordError(err)
			span.SetStatus(codes.Error, fmt.Sprintf("evaluation failed at key %d", i))

			errorCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "press")))

			logger.Warn("evaluation failed",
				zap.Int("key_index", i),
				zap.String("expression", h.calc.Expression()),
				zap.Error(err),
				zap.String("request_id", requestID),
			)
		} else {
			keySpan.SetStatus(codes.Ok, "")
		}
		keySpan.SetAttributes(attribute.String("press.display", display))
		keySpan.End()

		steps = append(steps, PressStep{Key: string(k), Display: display})
	}

	logger.Info("keys applied",
		zap.String("keys", req.Keys),
		zap.String("display", h.calc.Display()),
		zap.String("request_id", requestID),
	)

	resp := h.snapshot()
	resp.Steps = steps
	handlers.WriteJSON(w, http.StatusOK, resp)
}

// ---------------------------------------------------------------------------
// Handler — stateless evaluation
// ---------------------------------------------------------------------------

// Evaluate handles POST /calculator/evaluate. It does not touch the keypad
// session.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	// --- 1. Custom child span ---
	ctx, span := tracer.Start(ctx, "calculator.evaluate",
		trace.WithAttributes(
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	// --- 2. Decode request body ---
	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "evaluate", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	span.SetAttributes(attribute.String("calculator.expression", req.Expression))

	// --- 3. Evaluate (timed for histogram) ---
	start := time.Now()
	result, err := EvaluateFunc(req.Expression, func(red Reduction) {
		recordReduction(ctx, span, red)
	})
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0 // ms

	evaluationDuration.Record(ctx, elapsed)

	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "evaluate", "expression could not be evaluated", err, http.StatusUnprocessableEntity, w)
		return
	}

	formatted := FormatResult(result)

	// --- 4. Record metrics ---
	resultGauge.Record(ctx, result.InexactFloat64())

	// --- 5. Span event with the result ---
	span.AddEvent("evaluation.complete", trace.WithAttributes(
		attribute.String("result", formatted),
		attribute.Float64("duration_ms", elapsed),
	))
	span.SetAttributes(attribute.String("calculator.result", formatted))
	span.SetStatus(codes.Ok, "")

	// --- 6. Structured log with trace correlation ---
	logger.Info("expression evaluated",
		zap.String("expression", req.Expression),
		zap.String("result", formatted),
		zap.String("request_id", requestID),
		zap.Float64("duration_ms", elapsed),
	)

	// --- 7. Write JSON response ---
	handlers.WriteJSON(w, http.StatusOK, EvaluateResponse{
		Expression: req.Expression,
		Result:     formatted,
	})
}

func recordReduction(ctx context.Context, span trace.Span, red Reduction) {
	op := string(red.Op)
	reductionCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("operator", op)))
	span.AddEvent("reduction", trace.WithAttributes(
		attribute.String("operator", op),
		attribute.String("left", red.Left.String()),
		attribute.String("right", red.Right.String()),
		attribute.String("result", red.Result.String()),
	))
}

func (h *Handler) snapshot() DisplayResponse {
	return DisplayResponse{
		Display:    h.calc.Display(),
		Expression: h.calc.Expression(),
		Failed:     h.calc.Failed(),
	}
}

func keyKind(k rune) string {
	switch {
	case k == '=':
		return "equal"
	case k == '.':
		return "dot"
	case k == 'c' || k == 'C':
		return "clear"
	case k >= '0' && k <= '9':
		return "digit"
	case k == ' ':
		return "space"
	}
	return "operator"
}
