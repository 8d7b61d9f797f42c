package errors

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// ErrorHandler provides centralized error reporting for the CLI surface.
// Batch-level persistence of failures lives in the step log sinks, not here.
type ErrorHandler struct {
	logWriter io.Writer
	errorLog  []ErrorLogEntry
	mu        sync.Mutex
	maxLog    int
}

// ErrorLogEntry represents a reported error
type ErrorLogEntry struct {
	Timestamp time.Time              `json:"timestamp"`
	Code      ErrorCode              `json:"code"`
	Severity  ErrorSeverity          `json:"severity"`
	Message   string                 `json:"message"`
	Context   map[string]interface{} `json:"context,omitempty"`
}

// NewErrorHandler creates a new error handler writing to w
func NewErrorHandler(w io.Writer) *ErrorHandler {
	if w == nil {
		w = os.Stderr
	}
	return &ErrorHandler{
		logWriter: w,
		errorLog:  make([]ErrorLogEntry, 0),
		maxLog:    1000,
	}
}

// Handle processes an error with full context
func (h *ErrorHandler) Handle(err error) {
	if err == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	appErr, ok := err.(*AppError)
	if !ok {
		appErr = Wrap(err, ErrCodeInternal, err.Error())
	}

	entry := ErrorLogEntry{
		Timestamp: appErr.Timestamp,
		Code:      appErr.Code,
		Severity:  appErr.Severity,
		Message:   appErr.Message,
		Context:   appErr.Context,
	}

	h.errorLog = append(h.errorLog, entry)
	if len(h.errorLog) > h.maxLog {
		h.errorLog = h.errorLog[1:]
	}

	h.displayError(appErr)
}

// displayError writes a user-friendly error message
func (h *ErrorHandler) displayError(err *AppError) {
	fmt.Fprintf(h.logWriter, "\n[%s] %s\n", err.Code, err.Message)

	if len(err.Context) > 0 {
		fmt.Fprintln(h.logWriter, "\nContext:")
		for key, value := range err.Context {
			fmt.Fprintf(h.logWriter, "  %s: %v\n", key, value)
		}
	}

	if len(err.Suggestions) > 0 {
		fmt.Fprintln(h.logWriter, "\nSuggestions:")
		for i, suggestion := range err.Suggestions {
			fmt.Fprintf(h.logWriter, "  %d. %s\n", i+1, suggestion)
		}
	}
}

// Recent returns the most recent reported errors, newest last
func (h *ErrorHandler) Recent(n int) []ErrorLogEntry {
	h.mu.Lock()
	defer h.mu.Unlock()

	start := len(h.errorLog) - n
	if start < 0 {
		start = 0
	}
	out := make([]ErrorLogEntry, len(h.errorLog)-start)
	copy(out, h.errorLog[start:])
	return out
}

// TransactionHandler manages error handling for transactions
type TransactionHandler struct {
	handler      *ErrorHandler
	rollbackFunc func() error
	committed    bool
}

// NewTransactionHandler creates a new transaction handler
func (h *ErrorHandler) NewTransactionHandler(rollbackFunc func() error) *TransactionHandler {
	return &TransactionHandler{
		handler:      h,
		rollbackFunc: rollbackFunc,
	}
}

// Execute executes a function with automatic rollback on error
func (th *TransactionHandler) Execute(fn func() error) error {
	err := fn()

	if err != nil {
		th.handler.Handle(err)

		if th.rollbackFunc != nil && !th.committed {
			if rollbackErr := th.rollbackFunc(); rollbackErr != nil {
				th.handler.Handle(Wrap(rollbackErr, ErrCodeRollbackFailed, "Failed to rollback transaction"))
			}
		}

		return err
	}

	th.committed = true
	return nil
}

// GlobalErrorHandler is a singleton instance
var globalHandler *ErrorHandler
var globalHandlerOnce sync.Once

// GetGlobalErrorHandler returns the global error handler instance
func GetGlobalErrorHandler() *ErrorHandler {
	globalHandlerOnce.Do(func() {
		globalHandler = NewErrorHandler(os.Stderr)
	})
	return globalHandler
}
