package ports

import "context"

// ConfirmationSurface answers the signing prompt raised by the fee review's
// send button. Arm is called before that click so nothing the click triggers
// is missed.
type ConfirmationSurface interface {
	Arm(ctx context.Context, page Page) (Confirmation, error)
}

// Confirmation answers one armed prompt. Confirm returns false when the
// prompt could not be verified to exist. Release is safe to call more than
// once.
type Confirmation interface {
	Confirm(ctx context.Context) (bool, error)
	Release()
}
