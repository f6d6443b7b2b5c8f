package match

import "errors"

// Rejections. A rejected action leaves the match unchanged.
var (
	ErrNotStarted      = errors.New("match not started")
	ErrAlreadyStarted  = errors.New("match already started")
	ErrOutOfTurn       = errors.New("not this player's turn")
	ErrAlreadyRevealed = errors.New("card already revealed this round")
	ErrAlreadySwapped  = errors.New("swap already used this match")
	ErrMatchComplete   = errors.New("match already complete")
	ErrNoSwapOffered   = errors.New("no swap decision is owed")
	ErrHandSize        = errors.New("hand must hold exactly 3 cards")
	ErrCardBackInHand  = errors.New("card back cannot be dealt")
	ErrNoLoot          = errors.New("player has not won the match")
)
