package world

// Outcome is the result of resolving one entity's action.
type Outcome uint8

const (
	OutcomeRotated Outcome = iota // No forward intent, heading updated only
	OutcomeMoved                  // Stepped into an empty cell
	OutcomePushed                 // Pushed a movable one cell and followed it
	OutcomeBlocked                // Agent could not advance
	OutcomeBounced                // Mover could not advance and turned by its stir
)

// OutcomeName returns a short name for an outcome.
func OutcomeName(o Outcome) string {
	switch o {
	case OutcomeRotated:
		return "rotated"
	case OutcomeMoved:
		return "moved"
	case OutcomePushed:
		return "pushed"
	case OutcomeBlocked:
		return "blocked"
	case OutcomeBounced:
		return "bounced"
	default:
		return "unknown"
	}
}

// Resolve applies a rotation and an optional forward step to e, mutating the
// grid and e in place. Rotation always succeeds. A forward step into an
// empty cell moves; into a movable it pushes when the cell beyond is empty;
// anything else blocks, and blocked movers turn by their stir.
func (w *World) Resolve(e *Entity, rotation int, forward bool) Outcome {
	e.Direction = e.Direction.Rotate(rotation)
	if !forward {
		return OutcomeRotated
	}

	g := w.Grid
	next, kind := g.Lookup(e.Position, e.Direction)

	switch kind {
	case KindEmpty:
		g.Swap(e.Position, next)
		e.Position = next
		return OutcomeMoved

	case KindMovable:
		beyond, beyondKind := g.Lookup(next, e.Direction)
		if beyondKind == KindEmpty {
			// Block first, then the pusher into the cell it vacated.
			g.Swap(next, beyond)
			g.Swap(e.Position, next)
			e.Position = next
			return OutcomePushed
		}
	}

	return w.block(e)
}

func (w *World) block(e *Entity) Outcome {
	if !e.Autonomous() {
		return OutcomeBlocked
	}
	e.Direction = e.Direction.Rotate(e.Stir)
	return OutcomeBounced
}
