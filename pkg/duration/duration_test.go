package duration

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBeatLength(t *testing.T) {
	tests := []struct {
		token    Token
		expected *big.Rat
	}{
		{Whole, big.NewRat(4, 1)},
		{Quarter, big.NewRat(1, 1)},
		{Sixteenth, big.NewRat(1, 4)},
		{OneTwentyEighth, big.NewRat(1, 32)},
		{"triplet_eighth", big.NewRat(1, 3)},
		{"triplet_sixteenth", big.NewRat(1, 6)},
		{"dotted_eighth", big.NewRat(3, 4)},
		{"double_dotted_quarter", big.NewRat(7, 4)},
		{"d96", big.NewRat(1, 1)},
		{"d48", big.NewRat(1, 2)},
		{"d36", big.NewRat(3, 8)},
	}

	for _, tt := range tests {
		t.Run(string(tt.token), func(t *testing.T) {
			got, err := BeatLength(tt.token)
			require.NoError(t, err)
			assert.Zero(t, got.Cmp(tt.expected), "BeatLength(%q) = %s, want %s", tt.token, got, tt.expected)
		})
	}
}

func TestBeatLengthIsPure(t *testing.T) {
	for _, tok := range Tokens() {
		first := MustBeatLength(tok)
		first.Mul(first, big.NewRat(10, 1))

		second := MustBeatLength(tok)
		third := MustBeatLength(tok)
		assert.Zero(t, second.Cmp(third), "token %s changed between calls", tok)
	}
}

func TestBeatLengthUnknown(t *testing.T) {
	_, err := BeatLength("crotchet")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownDuration))

	var ude *UnknownDurationError
	require.True(t, errors.As(err, &ude))
	assert.Equal(t, Token("crotchet"), ude.Token)
}

func TestTokens(t *testing.T) {
	tokens := Tokens()
	assert.Len(t, tokens, 32)
	assert.Equal(t, Whole, tokens[0])
	assert.Equal(t, Token("double_dotted_onetwentyeighth"), tokens[len(tokens)-1])
}

func TestParse(t *testing.T) {
	tests := []struct {
		input    string
		expected Token
	}{
		{"quarter", Quarter},
		{"Dotted-Eighth", "dotted_eighth"},
		{"triplet sixteenth", "triplet_sixteenth"},
		{"qn", Quarter},
		{"den", "dotted_eighth"},
		{"ddhn", "double_dotted_half"},
		{"tsn", "triplet_sixteenth"},
		{"d72", "d72"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := Parse("dx")
	assert.ErrorIs(t, err, ErrUnknownDuration)
}

func TestTicks(t *testing.T) {
	ticks, err := Ticks("dotted_eighth")
	require.NoError(t, err)
	assert.Equal(t, 72, ticks)

	ticks, err = Ticks("triplet_onetwentyeighth")
	require.NoError(t, err)
	assert.Equal(t, 2, ticks)

	// 4.5 ticks rounds away from zero
	ticks, err = Ticks("dotted_onetwentyeighth")
	require.NoError(t, err)
	assert.Equal(t, 5, ticks)
}

func TestTicksFor(t *testing.T) {
	ticks, err := TicksFor(Quarter, ThirtySecond)
	require.NoError(t, err)
	assert.Equal(t, 84, ticks)

	ticks, err = TicksFor("triplet_eighth", ThirtySecond)
	require.NoError(t, err)
	assert.Equal(t, 20, ticks)

	_, err = TicksFor("nope", Quarter)
	assert.ErrorIs(t, err, ErrUnknownDuration)
}

func TestForSize(t *testing.T) {
	tests := []struct {
		steps    int
		expected Token
	}{
		{1, Whole},
		{3, "triplet_half"},
		{4, Quarter},
		{6, "triplet_quarter"},
		{8, Eighth},
		{12, "triplet_eighth"},
		{16, Sixteenth},
		{24, "triplet_sixteenth"},
		{32, ThirtySecond},
		{48, "triplet_thirtysecond"},
		{384, "d1"},
		{5, Quarter},  // 76.8 ticks
		{20, Quarter}, // 19.2 ticks
		{0, Quarter},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ForSize(tt.steps), "ForSize(%d)", tt.steps)
	}
}

func TestFromBeats(t *testing.T) {
	tok, ok := FromBeats(big.NewRat(3, 2))
	require.True(t, ok)
	assert.Equal(t, Token("dotted_quarter"), tok)

	_, ok = FromBeats(big.NewRat(1, 5))
	assert.False(t, ok)
}
