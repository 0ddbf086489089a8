package leaderboard

import (
	"fmt"

	"github.com/okian/rapport/internal/domain/scoring"
)

// Board names a ranking over one category and one score.
type Board string

// Boards.
const (
	DreamTeamsBoard  Board = "dream-teams"
	CursedPairsBoard Board = "cursed-pairs"
	RivalriesBoard   Board = "rivalries"
	DominanceBoard   Board = "dominance"
	DreamTriosBoard  Board = "dream-trios"
	CursedTriosBoard Board = "cursed-trios"
	InseparableBoard Board = "inseparable"
	OppositesBoard   Board = "opposites"
)

// Boards lists every board in display order.
var Boards = []Board{ //nolint:gochecknoglobals // read-only board catalogue
	DreamTeamsBoard,
	CursedPairsBoard,
	RivalriesBoard,
	DominanceBoard,
	DreamTriosBoard,
	CursedTriosBoard,
	InseparableBoard,
	OppositesBoard,
}

// ParseBoard returns the board named s.
func ParseBoard(s string) (Board, error) {
	for _, b := range Boards {
		if string(b) == s {
			return b, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownBoard, s)
}

// Category is the record category the board ranks.
func (b Board) Category() scoring.Category {
	switch b {
	case DreamTeamsBoard, CursedPairsBoard:
		return scoring.CategoryPair
	case RivalriesBoard, DominanceBoard:
		return scoring.CategoryRivalry
	case DreamTriosBoard, CursedTriosBoard:
		return scoring.CategoryTrio
	case InseparableBoard, OppositesBoard:
		return scoring.CategoryTeamPlacement
	default:
		return 0
	}
}

// Title is a human heading for the board.
func (b Board) Title() string {
	switch b {
	case DreamTeamsBoard:
		return "Dream Teams"
	case CursedPairsBoard:
		return "Cursed Pairings"
	case RivalriesBoard:
		return "Biggest Rivalries"
	case DominanceBoard:
		return "Most Lopsided Matchups"
	case DreamTriosBoard:
		return "Dream Trios"
	case CursedTriosBoard:
		return "Cursed Trios"
	case InseparableBoard:
		return "Inseparable"
	case OppositesBoard:
		return "Always Opposed"
	default:
		return string(b)
	}
}

func (b Board) String() string { return string(b) }
