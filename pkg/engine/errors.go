package engine

import (
	"errors"
	"fmt"
)

// ErrInvalidAction is the base of every resolver validation failure; use
// errors.Is(err, ErrInvalidAction) to map the whole family to one HTTP
// status at the edge.
var ErrInvalidAction = errors.New("invalid action")

var (
	ErrOutOfBounds           = fmt.Errorf("%w: target out of bounds", ErrInvalidAction)
	ErrMoveTooFar            = fmt.Errorf("%w: move exceeds range", ErrInvalidAction)
	ErrCellOccupied          = fmt.Errorf("%w: cell is occupied", ErrInvalidAction)
	ErrWeaponNotEquipped     = fmt.Errorf("%w: weapon not equipped", ErrInvalidAction)
	ErrNoTrajectory          = fmt.Errorf("%w: no valid trajectory to target", ErrInvalidAction)
	ErrInsufficientResources = fmt.Errorf("%w: insufficient resources", ErrInvalidAction)
	ErrInteractTooFar        = fmt.Errorf("%w: interact target too far", ErrInvalidAction)
	ErrNoResource            = fmt.Errorf("%w: no matching resource at target", ErrInvalidAction)
	ErrUnknownRecipe         = fmt.Errorf("%w: unknown or disabled recipe", ErrInvalidAction)
	ErrUnknownHealItem       = fmt.Errorf("%w: unknown heal item", ErrInvalidAction)
	ErrUnknownActionType     = fmt.Errorf("%w: unknown action type", ErrInvalidAction)
	ErrBadParams             = fmt.Errorf("%w: malformed action params", ErrInvalidAction)
	ErrUnknownSide           = fmt.Errorf("%w: unknown actor side", ErrInvalidAction)
)
