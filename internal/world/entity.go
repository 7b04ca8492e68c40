package world

// Entity is anything that moves under its own heading: the agent or an
// autonomous mover.
type Entity struct {
	ID        int       `json:"id"`
	Position  Cell      `json:"position"`
	Direction Direction `json:"direction"`

	// Stir is the turn applied when forward motion is blocked: -1 or +1 for
	// movers, 0 for the agent.
	Stir int `json:"stir"`
}

// Autonomous reports whether the entity steers itself.
func (e *Entity) Autonomous() bool {
	return e.Stir != 0
}

// Kind returns the physical kind this entity occupies on the grid.
func (e *Entity) Kind() Kind {
	if e.Autonomous() {
		return KindMoving
	}
	return KindAgent
}

// Action is one control input: a rotation in {-1, 0, 1} followed by an
// optional forward step.
type Action struct {
	Rotation int `json:"rotation"`
	Forward  int `json:"forward"`
}

// Actions lists the six primitive actions in enumeration order.
var Actions = [6]Action{
	{Rotation: -1, Forward: 0},
	{Rotation: -1, Forward: 1},
	{Rotation: 0, Forward: 0},
	{Rotation: 0, Forward: 1},
	{Rotation: 1, Forward: 0},
	{Rotation: 1, Forward: 1},
}
