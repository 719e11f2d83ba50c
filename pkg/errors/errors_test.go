// pkg/errors/errors_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test error creation, wrapping, and utility functions

package errors_test

import (
	stderrors "errors"
	"testing"

	"github.com/arthur-debert/mothball/pkg/errors"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    errors.ErrorCode
		message string
		wantStr string
	}{
		{
			name:    "type_not_registered_error",
			code:    errors.ErrTypeNotRegistered,
			message: "no schema for type employee",
			wantStr: "[TYPE_NOT_REGISTERED] no schema for type employee",
		},
		{
			name:    "missing_attribute_error",
			code:    errors.ErrMissingAttribute,
			message: "attribute bank_details not found",
			wantStr: "[MISSING_ATTRIBUTE] attribute bank_details not found",
		},
		{
			name:    "persistence_error",
			code:    errors.ErrPersistence,
			message: "save failed",
			wantStr: "[PERSISTENCE] save failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.New(tt.code, tt.message)

			if err.Code != tt.code {
				t.Errorf("New() code = %v, want %v", err.Code, tt.code)
			}

			if err.Message != tt.message {
				t.Errorf("New() message = %q, want %q", err.Message, tt.message)
			}

			if err.Details == nil {
				t.Error("New() details should be initialized")
			}

			if got := err.Error(); got != tt.wantStr {
				t.Errorf("Error() = %q, want %q", got, tt.wantStr)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	tests := []struct {
		name    string
		code    errors.ErrorCode
		format  string
		args    []interface{}
		wantMsg string
	}{
		{
			name:    "format_with_string",
			code:    errors.ErrTypeNotRegistered,
			format:  "type %q is not registered",
			args:    []interface{}{"company"},
			wantMsg: `type "company" is not registered`,
		},
		{
			name:    "format_with_multiple_args",
			code:    errors.ErrMissingAttribute,
			format:  "attribute %q not found on %s",
			args:    []interface{}{"legal_name", "archived_company"},
			wantMsg: `attribute "legal_name" not found on archived_company`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.Newf(tt.code, tt.format, tt.args...)

			if err.Message != tt.wantMsg {
				t.Errorf("Newf() message = %q, want %q", err.Message, tt.wantMsg)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	baseErr := stderrors.New("disk full")

	t.Run("wrap_non_nil_error", func(t *testing.T) {
		err := errors.Wrap(baseErr, errors.ErrPersistence, "save failed")

		if err.Code != errors.ErrPersistence {
			t.Errorf("Wrap() code = %v, want %v", err.Code, errors.ErrPersistence)
		}

		if err.Wrapped != baseErr {
			t.Error("Wrap() should preserve wrapped error")
		}

		wantStr := "[PERSISTENCE] save failed: disk full"
		if got := err.Error(); got != wantStr {
			t.Errorf("Error() = %q, want %q", got, wantStr)
		}
	})

	t.Run("wrap_nil_error_returns_nil", func(t *testing.T) {
		err := errors.Wrap(nil, errors.ErrPersistence, "save failed")
		if err != nil {
			t.Error("Wrap(nil) should return nil")
		}
	})

	t.Run("wrapped_error_unwraps", func(t *testing.T) {
		err := errors.Wrapf(baseErr, errors.ErrPersistence, "saving %s", "employee")
		if !stderrors.Is(err, baseErr) {
			t.Error("errors.Is should find the wrapped error")
		}
	})
}

func TestWithDetail(t *testing.T) {
	err := errors.New(errors.ErrCascadeCycle, "cycle detected").
		WithDetail("type", "company").
		WithDetail("relation", "employees")

	if err.Details["type"] != "company" {
		t.Errorf("WithDetail() type = %v, want company", err.Details["type"])
	}
	if err.Details["relation"] != "employees" {
		t.Errorf("WithDetail() relation = %v, want employees", err.Details["relation"])
	}
}

func TestIsErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code errors.ErrorCode
		want bool
	}{
		{
			name: "matching_code",
			err:  errors.New(errors.ErrCascadeCycle, "cycle"),
			code: errors.ErrCascadeCycle,
			want: true,
		},
		{
			name: "non_matching_code",
			err:  errors.New(errors.ErrCascadeCycle, "cycle"),
			code: errors.ErrPersistence,
			want: false,
		},
		{
			name: "plain_error",
			err:  stderrors.New("plain"),
			code: errors.ErrCascadeCycle,
			want: false,
		},
		{
			name: "wrapped_in_plain_error",
			err:  stderrors.Join(stderrors.New("outer"), errors.New(errors.ErrPersistence, "save")),
			code: errors.ErrPersistence,
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.IsErrorCode(tt.err, tt.code); got != tt.want {
				t.Errorf("IsErrorCode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetErrorCode(t *testing.T) {
	t.Run("structured_error", func(t *testing.T) {
		err := errors.New(errors.ErrRulesParse, "bad toml")
		if got := errors.GetErrorCode(err); got != errors.ErrRulesParse {
			t.Errorf("GetErrorCode() = %v, want %v", got, errors.ErrRulesParse)
		}
	})

	t.Run("plain_error_returns_unknown", func(t *testing.T) {
		if got := errors.GetErrorCode(stderrors.New("plain")); got != errors.ErrUnknown {
			t.Errorf("GetErrorCode() = %v, want %v", got, errors.ErrUnknown)
		}
	})
}
