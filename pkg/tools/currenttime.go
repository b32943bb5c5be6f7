package tools

import (
	"context"
	"time"

	"github.com/dodgeblaster/orange-agent/pkg/policy"
	"github.com/dodgeblaster/orange-agent/pkg/schema"
	"github.com/getkin/kin-openapi/openapi3"
)

// CurrentTime reports the current wall-clock time. Harmless, never gated.
type CurrentTime struct {
	// Now is overridable for tests. Defaults to time.Now.
	Now func() time.Time
}

type currentTimeParams struct {
	Format string `mapstructure:"format"`
}

func (t CurrentTime) Name() string        { return "current_time" }
func (t CurrentTime) Description() string { return "Returns the current date and time." }

func (t CurrentTime) ParameterSchema() *openapi3.Schema {
	return schema.Object(map[string]*openapi3.Schema{
		"format": schema.String("Go reference layout to format the time with. Defaults to RFC 3339."),
	})
}

func (t CurrentTime) Validate(args map[string]any) error {
	return schema.Validate(t.ParameterSchema(), args)
}

func (t CurrentTime) RequiresConfirmation(args map[string]any) bool { return false }

func (t CurrentTime) Effect() policy.Effect { return policy.EffectReadOnly }

func (t CurrentTime) Execute(ctx context.Context, args map[string]any) (any, error) {
	var params currentTimeParams
	if err := decode(args, &params); err != nil {
		return nil, err
	}

	now := time.Now
	if t.Now != nil {
		now = t.Now
	}

	layout := time.RFC3339
	if params.Format != "" {
		layout = params.Format
	}
	return now().Format(layout), nil
}
