package logger

import (
	"testing"

	"go.uber.org/zap"
)

func TestStringFieldsSkipsEmptyEntries(t *testing.T) {
	t.Parallel()

	fields := StringFields(
		StringField{Key: "judge_provider", Value: "gemini"},
		StringField{Key: "  ", Value: "ignored"},
		StringField{Key: "judge_model", Value: "   "},
	)

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}
	if fields[0].Key != "judge_provider" {
		t.Fatalf("unexpected field key: %s", fields[0].Key)
	}
}

func TestWithFieldsNilLogger(t *testing.T) {
	t.Parallel()

	logger := WithFields(nil, zap.String("stage", "grade"))
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestWithJudgeFieldsOmitsEmptyValues(t *testing.T) {
	t.Parallel()

	if logger := WithJudgeFields(zap.NewNop(), "", ""); logger == nil {
		t.Fatal("expected non-nil logger")
	}
}
