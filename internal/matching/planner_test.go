package matching

import (
	"testing"

	"chessmatch/internal/board"
	"chessmatch/internal/game"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, fen string) *board.Position {
	t.Helper()
	p, err := board.Decode(fen)
	require.NoError(t, err)
	return &p
}

func TestPolicyTableCoversEveryKind(t *testing.T) {
	for _, k := range board.PieceKinds {
		assert.NotNil(t, policies[k].emit, "missing policy for %s", k)
	}
}

func TestFeatureKeys(t *testing.T) {
	req := NewRequest(board.ColorWhite, board.Knight, board.Pawn, board.Knight)
	assert.Equal(t, []string{"whitePawn", "whiteKnight"}, req.FeatureKeys())

	req = NewRequest(board.ColorBlack, board.King, board.Queen)
	assert.Equal(t, []string{"blackQueen", "blackKing"}, req.FeatureKeys())

	assert.Empty(t, NewRequest(board.ColorWhite).Features())
}

func TestFeaturesDoesNotMutateRequest(t *testing.T) {
	pieces := []board.PieceKind{board.Rook, board.Pawn}
	req := NewRequest(board.ColorWhite, pieces...)
	_ = req.Features()
	assert.Equal(t, []board.PieceKind{board.Rook, board.Pawn}, req.Pieces)
}

func TestRequestValidate(t *testing.T) {
	assert.NoError(t, NewRequest(board.ColorWhite).Validate())

	tests := []struct {
		name  string
		mut   func(*Request)
		field string
	}{
		{"zero limit", func(r *Request) { r.Limit = 0 }, "limit"},
		{"inverted band", func(r *Request) { r.MinElo, r.MaxElo = 2000, 1000 }, "minElo"},
		{"bad color", func(r *Request) { r.Color = 'x' }, "color"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := NewRequest(board.ColorWhite)
			tt.mut(&req)
			err := req.Validate()
			var ierr *InvalidRequestError
			require.ErrorAs(t, err, &ierr)
			assert.Equal(t, tt.field, ierr.Field)
		})
	}
}

func TestBuildPlanRatingPredicatesAlwaysPresent(t *testing.T) {
	ref := decode(t, "8/8/8/4P3/8/8/8/4K3 w - - 0 1")
	plan := BuildPlan(ref, NewRequest(board.ColorWhite))

	require.Len(t, plan.Prefilters, 2)
	assert.Empty(t, plan.Scores)
	for i, c := range []board.Color{board.ColorWhite, board.ColorBlack} {
		assert.Equal(t, OpRatingBetween, plan.Prefilters[i].Op)
		assert.Equal(t, c, plan.Prefilters[i].Feature.Color)
		assert.Equal(t, DefaultMinElo, plan.Prefilters[i].Min)
		assert.Equal(t, DefaultMaxElo, plan.Prefilters[i].Max)
	}
}

func TestBuildPlanPerKindPolicy(t *testing.T) {
	ref := decode(t, "8/8/8/4P3/8/8/8/4K3 w - - 0 1")

	t.Run("pawn", func(t *testing.T) {
		plan := BuildPlan(ref, NewRequest(board.ColorWhite, board.Pawn))
		require.Len(t, plan.Prefilters, 3)
		assert.Equal(t, OpMaskIntersects, plan.Prefilters[2].Op)
		assert.Equal(t, board.Bitboard(1)<<36, plan.Prefilters[2].Ref)
		require.Len(t, plan.Scores, 1)
		assert.Equal(t, ScoreJaccard, plan.Scores[0].Kind)
	})

	t.Run("empty pawn mask is scored but not filtered", func(t *testing.T) {
		plan := BuildPlan(ref, NewRequest(board.ColorBlack, board.Pawn))
		assert.Len(t, plan.Prefilters, 2)
		require.Len(t, plan.Scores, 1)
		assert.Equal(t, board.Bitboard(0), plan.Scores[0].Ref)
	})

	t.Run("known king", func(t *testing.T) {
		plan := BuildPlan(ref, NewRequest(board.ColorWhite, board.King))
		require.Len(t, plan.Prefilters, 3)
		assert.Equal(t, OpSquareEquals, plan.Prefilters[2].Op)
		assert.Equal(t, board.Square(4), plan.Prefilters[2].Square)
		require.Len(t, plan.Scores, 1)
		assert.Equal(t, ScoreEquality, plan.Scores[0].Kind)
	})

	t.Run("absent king", func(t *testing.T) {
		plan := BuildPlan(ref, NewRequest(board.ColorBlack, board.King))
		assert.Len(t, plan.Prefilters, 2)
		assert.Empty(t, plan.Scores)
	})

	t.Run("empty piece set", func(t *testing.T) {
		plan := BuildPlan(ref, NewRequest(board.ColorWhite, board.Knight, board.Bishop, board.Rook, board.Queen))
		assert.Len(t, plan.Prefilters, 2)
		assert.Empty(t, plan.Scores)
	})

	t.Run("non-empty piece set", func(t *testing.T) {
		start := decode(t, board.StartingFEN)
		plan := BuildPlan(start, NewRequest(board.ColorBlack, board.Knight))
		require.Len(t, plan.Prefilters, 3)
		assert.Equal(t, OpSetIntersects, plan.Prefilters[2].Op)
		assert.Equal(t, 2, plan.Prefilters[2].Ref.Count())
		require.Len(t, plan.Scores, 1)
		assert.Equal(t, ScoreOverlap, plan.Scores[0].Kind)
	})
}

func TestScoresAreBoundedAndReflexive(t *testing.T) {
	fens := []string{
		board.StartingFEN,
		"8/8/8/4P3/8/8/8/4K3 w - - 0 1",
		"r1bqkb1r/pppp1ppp/2n2n2/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R w KQkq - 4 4",
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	}

	for _, refFEN := range fens {
		ref := decode(t, refFEN)
		for _, c := range board.Colors {
			for _, k := range board.PieceKinds {
				plan := BuildPlan(ref, NewRequest(c, k))
				for _, s := range plan.Scores {
					self := s.Evaluate(ref)
					if ref.Pieces(c, k) != 0 {
						assert.Equal(t, 1.0, self, "%s %s", refFEN, s.Feature)
					}
					for _, candFEN := range fens {
						v := s.Evaluate(decode(t, candFEN))
						assert.GreaterOrEqual(t, v, 0.0)
						assert.LessOrEqual(t, v, 1.0)
					}
				}
			}
		}
	}
}

func TestScoreValues(t *testing.T) {
	ref := decode(t, "8/8/8/8/3PP3/8/8/4K3 w - - 0 1")
	cand := decode(t, "8/8/8/8/4PP2/8/8/3K4 w - - 0 1")

	jaccard := Score{Kind: ScoreJaccard, Feature: Feature{board.ColorWhite, board.Pawn}, Ref: ref.WhitePawns}
	assert.InDelta(t, 1.0/3.0, jaccard.Evaluate(cand), 1e-9)

	king := Score{Kind: ScoreEquality, Feature: Feature{board.ColorWhite, board.King}, Square: ref.WhiteKing}
	assert.Equal(t, 0.0, king.Evaluate(cand))

	overlap := Score{Kind: ScoreOverlap, Feature: Feature{board.ColorWhite, board.Pawn}, Ref: ref.WhitePawns}
	assert.Equal(t, 0.5, overlap.Evaluate(cand))

	emptyJaccard := Score{Kind: ScoreJaccard, Feature: Feature{board.ColorBlack, board.Pawn}}
	assert.Equal(t, 0.0, emptyJaccard.Evaluate(cand))
}

func TestPlanMatchesAndScore(t *testing.T) {
	ref := decode(t, "8/8/8/4P3/8/8/8/4K3 w - - 0 1")
	plan := BuildPlan(ref, NewRequest(board.ColorWhite, board.Pawn, board.King))

	same := decode(t, "8/8/8/4P3/8/8/8/4K3 w - - 0 1")
	rated := &game.Game{WhiteElo: 1500, BlackElo: 1500}
	unrated := &game.Game{WhiteElo: 100, BlackElo: 1500}

	assert.True(t, plan.Matches(same, rated))
	assert.False(t, plan.Matches(same, unrated))
	assert.Equal(t, 1.0, plan.Score(same))

	moved := decode(t, "8/8/8/4P3/8/8/8/3K4 w - - 0 1")
	assert.False(t, plan.Matches(moved, rated))
	assert.Equal(t, 0.5, plan.Score(moved))

	assert.Equal(t, 0.0, Plan{}.Score(same))
}

func TestDedup(t *testing.T) {
	hits := []Candidate{
		{PositionID: "p1", GameID: "g1", Score: 0.9},
		{PositionID: "p2", GameID: "g1", Score: 0.8},
		{PositionID: "p3", GameID: "g2", Score: 0.95},
		{PositionID: "p4", GameID: "g3", Score: 0.5},
		{PositionID: "p5", GameID: "g2", Score: 0.4},
		{PositionID: "p6", GameID: "g4", Score: 0.5},
	}

	out := Dedup(hits, 10)
	require.Len(t, out, 4)
	assert.Equal(t, []string{"p3", "p1", "p4", "p6"}, positionIDs(out))

	out = Dedup(hits, 2)
	assert.Equal(t, []string{"p3", "p1"}, positionIDs(out))

	assert.Empty(t, Dedup(nil, 5))
	assert.Empty(t, Dedup(hits, 0))
	assert.Equal(t, "p1", hits[0].PositionID, "input must not be reordered")
}

func TestDedupProperties(t *testing.T) {
	var hits []Candidate
	for i := 0; i < 200; i++ {
		hits = append(hits, Candidate{
			PositionID: string(rune('A' + i%26)),
			GameID:     string(rune('a' + (i*7)%13)),
			Score:      float64((i*37)%101) / 100,
		})
	}

	for _, limit := range []int{1, 3, 13, 50} {
		out := Dedup(hits, limit)
		assert.LessOrEqual(t, len(out), limit)
		seen := map[string]bool{}
		for i, h := range out {
			assert.False(t, seen[h.GameID], "duplicate game %s", h.GameID)
			seen[h.GameID] = true
			if i > 0 {
				assert.GreaterOrEqual(t, out[i-1].Score, h.Score)
			}
		}
	}
}

func positionIDs(cs []Candidate) []string {
	ids := make([]string, len(cs))
	for i, c := range cs {
		ids[i] = c.PositionID
	}
	return ids
}
