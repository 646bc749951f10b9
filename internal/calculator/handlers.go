package calculator

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"go-decimal-calculator/internal/calculation"
	"go-decimal-calculator/internal/handlers"
	"go-decimal-calculator/internal/observability"
)

// Handler serves the calculator API over one shared Calculator.
type Handler struct {
	calc *Calculator
}

func NewHandler(calc *Calculator) *Handler {
	return &Handler{calc: calc}
}

// ---------------------------------------------------------------------------
// Handlers: operations
// ---------------------------------------------------------------------------

// Perform handles POST /calculator/{op}.
func (h *Handler) Perform(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "op")

	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, fmt.Sprintf("calculator.%s", slug),
		trace.WithAttributes(
			attribute.String("calculator.route", slug),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	op, ok := calculation.ParseCommand(slug)
	if !ok {
		err := fmt.Errorf("%w: %s", calculation.ErrUnknownOperation, slug)
		observability.RecordError(ctx, span, logger, httpErrorCounter, slug, err.Error(), err, http.StatusNotFound, w)
		return
	}

	var req CalcRequest
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, httpErrorCounter, slug, "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	calc, err := h.calc.PerformContext(ctx, string(op), req.A, req.B)
	if err != nil {
		observability.RecordError(ctx, span, logger, httpErrorCounter, slug, err.Error(), err, statusFor(err), w)
		return
	}

	span.AddEvent("computation.complete", trace.WithAttributes(
		attribute.String("result", calc.Result().String()),
	))
	span.SetStatus(codes.Ok, "")

	logger.Info("calculator operation completed",
		zap.String("operation", string(calc.Operation())),
		zap.Stringer("a", calc.Operand1()),
		zap.Stringer("b", calc.Operand2()),
		zap.Stringer("result", calc.Result()),
		zap.String("request_id", requestID),
	)

	handlers.WriteJSON(w, http.StatusOK, newCalcResponse(calc, h.calc.Config().Precision))
}

// Operations handles GET /calculator/operations.
func (h *Handler) Operations(w http.ResponseWriter, r *http.Request) {
	ops := calculation.Operations()
	resp := OperationsResponse{Operations: make(map[string]string, len(ops))}
	for _, op := range ops {
		resp.Operations[op.Command()] = string(op)
	}
	handlers.WriteJSON(w, http.StatusOK, resp)
}

// ---------------------------------------------------------------------------
// Handlers: history
// ---------------------------------------------------------------------------

// History handles GET /calculator/history.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	handlers.WriteJSON(w, http.StatusOK, newHistoryResponse(h.calc.History()))
}

// ClearHistory handles DELETE /calculator/history.
func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	h.calc.ClearHistory()
	w.WriteHeader(http.StatusNoContent)
}

// Undo handles POST /calculator/undo.
func (h *Handler) Undo(w http.ResponseWriter, r *http.Request) {
	h.historyAction(w, r, "undo", h.calc.Undo)
}

// Redo handles POST /calculator/redo.
func (h *Handler) Redo(w http.ResponseWriter, r *http.Request) {
	h.historyAction(w, r, "redo", h.calc.Redo)
}

// SaveHistory handles POST /calculator/history/save.
func (h *Handler) SaveHistory(w http.ResponseWriter, r *http.Request) {
	h.historyAction(w, r, "save", h.calc.SaveHistory)
}

// LoadHistory handles POST /calculator/history/load.
func (h *Handler) LoadHistory(w http.ResponseWriter, r *http.Request) {
	h.historyAction(w, r, "load", h.calc.LoadHistory)
}

// historyAction runs action inside a span and answers with the resulting
// history.
func (h *Handler) historyAction(w http.ResponseWriter, r *http.Request, name string, action func() error) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)

	ctx, span := tracer.Start(ctx, fmt.Sprintf("calculator.history.%s", name),
		trace.WithAttributes(
			attribute.String("request.id", observability.RequestIDFromContext(ctx)),
		),
	)
	defer span.End()

	if err := action(); err != nil {
		observability.RecordError(ctx, span, logger, httpErrorCounter, name, err.Error(), err, statusFor(err), w)
		return
	}

	calcs := h.calc.History()
	span.SetAttributes(attribute.Int("calculator.history.size", len(calcs)))
	span.SetStatus(codes.Ok, "")

	logger.Info("history action completed",
		zap.String("action", name),
		zap.Int("size", len(calcs)),
	)

	handlers.WriteJSON(w, http.StatusOK, newHistoryResponse(calcs))
}
