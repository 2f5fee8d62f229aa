package models

import "errors"

var (
	ErrInvalidSymbol         = errors.New("invalid symbol")
	ErrInvalidPrice          = errors.New("invalid price")
	ErrInvalidTimestamp      = errors.New("invalid timestamp")
	ErrInvalidBar            = errors.New("invalid bar (high < low)")
	ErrInvalidVolume         = errors.New("invalid volume")
	ErrNonMonotonicTimestamp = errors.New("bar timestamps must be strictly increasing")
	ErrInvalidSignalKind     = errors.New("invalid signal kind")
	ErrInvalidEventID        = errors.New("invalid signal event ID")
)
