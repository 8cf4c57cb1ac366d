package brackets

import (
	"errors"
	"math/rand"

	"github.com/mkarsky/brain-battle/models"
)

// ErrInsufficientTeams возвращается, когда в составе меньше двух команд.
var ErrInsufficientTeams = errors.New("not enough teams to generate matches")

// Pair — неупорядоченная пара различных команд для одного матча.
type Pair struct {
	Team1ID int
	Team2ID int
}

type PairingGenerator interface {
	GeneratePairs(teams []models.Team) ([]Pair, error)

	GetName() string
}

// RandomPairingGenerator перемешивает состав равномерно случайной
// перестановкой и разбивает его на последовательные пары.
// При нечётном числе команд последняя остаётся без пары и матча не получает.
type RandomPairingGenerator struct{}

func NewRandomPairingGenerator() PairingGenerator {
	return &RandomPairingGenerator{}
}

func (g *RandomPairingGenerator) GetName() string {
	return "RandomPairing"
}

func (g *RandomPairingGenerator) GeneratePairs(teams []models.Team) ([]Pair, error) {
	if len(teams) < 2 {
		return nil, ErrInsufficientTeams
	}

	shuffled := make([]models.Team, len(teams))
	copy(shuffled, teams)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	pairs := make([]Pair, 0, len(shuffled)/2)
	for i := 0; i+1 < len(shuffled); i += 2 {
		pairs = append(pairs, Pair{
			Team1ID: shuffled[i].ID,
			Team2ID: shuffled[i+1].ID,
		})
	}
	return pairs, nil
}
