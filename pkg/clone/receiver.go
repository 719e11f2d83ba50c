package clone

import (
	"github.com/arthur-debert/mothball/pkg/schema"
)

// receiverResult is the explicit outcome of receiver construction.
// Fallback marks the branch where the configured target type was not
// resolvable and the source's own type was used instead.
type receiverResult struct {
	instance interface{}
	schema   *schema.Schema
	fallback bool
}

// buildReceiver constructs the destination instance for an invocation.
//
// An empty or "self" target is the configured self-clone, not a
// fallback. A named target that is not registered falls back to the
// source's own type; the fallback is logged and counted so operators
// can see misconfigured targets instead of silently archiving onto the
// wrong shape.
func (c *Cloner) buildReceiver(cfg *Config, src *schema.Schema) receiverResult {
	target := cfg.Target
	if target == "" || target == TargetSelf {
		return receiverResult{instance: src.New(), schema: src}
	}

	targetSchema, err := c.schemas.ByName(target)
	if err != nil {
		c.fallbacks.Add(1)
		log.Warn().
			Str("source", src.Name()).
			Str("target", target).
			Msg("Target type not resolvable, falling back to source type")
		return receiverResult{instance: src.New(), schema: src, fallback: true}
	}

	return receiverResult{instance: targetSchema.New(), schema: targetSchema}
}

// receiverFor returns the invocation's receiver, constructing it on
// first use. Repeated calls within one invocation return the same
// instance.
func (c *Cloner) receiverFor(inv *invocation) (interface{}, *schema.Schema) {
	if inv.receiver == nil {
		res := c.buildReceiver(inv.cfg, inv.srcSchema)
		inv.receiver = res.instance
		inv.recvSchema = res.schema
		inv.fellBack = res.fallback
	}
	return inv.receiver, inv.recvSchema
}
