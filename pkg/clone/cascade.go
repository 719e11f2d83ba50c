package clone

import (
	"github.com/arthur-debert/mothball/pkg/errors"
	"github.com/arthur-debert/mothball/pkg/schema"
)

// cascade clones the related objects of a just-saved invocation. Each
// declared relation is walked in order; every child is cloned with a
// linkage attribute wiring its foreign key to the receiver's post-save
// identity. The first failing child halts the remaining siblings; the
// failure keeps its code and gains the relation it happened under.
func (c *Cloner) cascade(inv *invocation, visited map[visitKey]bool) error {
	if len(inv.cfg.With) == 0 {
		return nil
	}

	for _, name := range inv.cfg.With {
		rel, err := inv.srcSchema.Relation(name)
		if err != nil {
			return err
		}

		children, err := inv.srcSchema.Related(inv.source, name)
		if err != nil {
			return err
		}
		if len(children) == 0 {
			continue
		}

		newID, ok := inv.recvSchema.Identity(inv.receiver)
		if !ok {
			return errors.Newf(errors.ErrSchemaInvalid,
				"receiver type %q has no identity attribute; relation %q cannot be linked",
				inv.recvSchema.Name(), name).
				WithDetail("source", inv.srcSchema.Name())
		}

		log.Debug().
			Str("type", inv.srcSchema.Name()).
			Str("relation", name).
			Int("children", len(children)).
			Msg("Cascading relation")

		for _, child := range children {
			if err := c.execute(child, Attrs{rel.ForeignKey: newID}, visited); err != nil {
				return errors.Wrapf(err, errors.GetErrorCode(err),
					"cascading relation %q of %s", name, inv.srcSchema.Name())
			}
		}
	}

	return nil
}

// cycleError reports a relation graph that returned to a record whose
// clone is already in progress or finished within this cascade
func cycleError(s *schema.Schema, source interface{}) error {
	err := errors.Newf(errors.ErrCascadeCycle,
		"relation graph revisits %q during cascade", s.Name())
	if id, ok := s.Identity(source); ok {
		err = err.WithDetail("identity", id)
	}
	return err
}
