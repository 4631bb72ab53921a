package records

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/nstp-roster/internal/common"
	"github.com/joseph-ayodele/nstp-roster/internal/entity"
)

// Validator checks that a record's required fields are present and not blank.
type Validator struct {
	required []string
	schema   *jsonschema.Schema
	logger   *slog.Logger
}

func NewValidator(required []string, logger *slog.Logger) (*Validator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	b, err := json.Marshal(buildPresenceSchema(required))
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("record.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("record.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{
		required: append([]string(nil), required...),
		schema:   schema,
		logger:   logger,
	}, nil
}

// Check returns nil when rec is valid, otherwise an error naming what failed.
func (v *Validator) Check(rec entity.Record) error {
	fields := rec.Fields()
	doc := make(map[string]any, len(fields))
	for k, val := range fields {
		doc[k] = strings.TrimSpace(val)
	}
	err := v.schema.Validate(doc)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if errors.As(err, &ve) {
		return errors.New(reason(ve))
	}
	return err
}

func (v *Validator) Valid(rec entity.Record) bool {
	return v.Check(rec) == nil
}

func reason(ve *jsonschema.ValidationError) string {
	var parts []string
	for _, be := range ve.BasicOutput().Errors {
		if be.Error == "" || strings.HasPrefix(be.Error, "doesn't validate with") {
			continue
		}
		loc := strings.TrimPrefix(be.InstanceLocation, "/")
		if loc == "" {
			parts = append(parts, be.Error)
		} else {
			parts = append(parts, loc+": "+be.Error)
		}
	}
	if len(parts) == 0 {
		return ve.Error()
	}
	return strings.Join(parts, "; ")
}

// FilterValid keeps the valid records in order and reports the rest as
// skipped rows with 1-based indexes.
func FilterValid[T entity.Record](v *Validator, recs []T) ([]T, []common.RowIssue) {
	valid := make([]T, 0, len(recs))
	var skipped []common.RowIssue
	for i, rec := range recs {
		if err := v.Check(rec); err != nil {
			skipped = append(skipped, common.RowIssue{Index: i + 1, Key: rec.Key(), Reason: err.Error()})
			v.logger.Debug("records.row.skipped", "kind", rec.Kind(), "index", i+1, "key", rec.Key(), "reason", err.Error())
			continue
		}
		valid = append(valid, rec)
	}
	return valid, skipped
}

var validators sync.Map // required-set key -> *Validator

// Validate reports whether rec carries every field in required.
func Validate(rec entity.Record, required []string) bool {
	key := strings.Join(required, "\x00")
	if cached, ok := validators.Load(key); ok {
		return cached.(*Validator).Valid(rec)
	}
	v, err := NewValidator(required, nil)
	if err != nil {
		slog.Default().Error("records.schema_compile_failed", "err", err)
		return false
	}
	actual, _ := validators.LoadOrStore(key, v)
	return actual.(*Validator).Valid(rec)
}
