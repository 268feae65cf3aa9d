package rhythm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEuclid(t *testing.T) {
	tests := []struct {
		onsets   int
		steps    int
		expected string
	}{
		{3, 8, "10010010"},
		{5, 8, "10110110"},
		{2, 5, "10100"},
		{4, 12, "100100100100"},
		{4, 16, "1000100010001000"},
		{0, 4, "0000"},
		{4, 4, "1111"},
		{9, 4, "1111"},
		{3, 0, ""},
	}

	for _, tt := range tests {
		got := Euclid(tt.onsets, tt.steps)
		assert.Equal(t, tt.expected, got, "Euclid(%d, %d)", tt.onsets, tt.steps)
	}
}

func TestEuclidProperties(t *testing.T) {
	for n := 1; n <= 24; n++ {
		for p := 0; p <= n; p++ {
			got := Euclid(p, n)
			require.Len(t, got, n, "Euclid(%d, %d)", p, n)
			require.Equal(t, p, Onsets(got), "Euclid(%d, %d) = %s", p, n, got)
		}
		assert.Equal(t, "", Euclid(n, 0))
	}
}

func TestRotate(t *testing.T) {
	assert.Equal(t, "10010100", Rotate("10010010", 3))
	assert.Equal(t, "01001001", Rotate("10010010", -1))
	assert.Equal(t, "", Rotate("", 2))
}

func TestNegate(t *testing.T) {
	assert.Equal(t, "0011", Negate("1100"))
	assert.Equal(t, "1x0", Negate("0x1"))
}

func TestIsSilent(t *testing.T) {
	assert.True(t, IsSilent("0000"))
	assert.False(t, IsSilent("0010"))
	assert.False(t, IsSilent(""))
}

func TestVariations(t *testing.T) {
	got, err := Variations([]rune{'1', '0'}, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"00", "01", "10", "11"}, got)

	got, err = Variations([]rune{'0', '1', '2'}, 3)
	require.NoError(t, err)
	require.Len(t, got, 27)
	assert.Equal(t, "000", got[0])
	assert.Equal(t, "222", got[26])
	assert.IsIncreasing(t, got)

	got, err = Variations([]rune{'1', '0', '1'}, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "1"}, got)

	got, err = Variations([]rune{'0', '1'}, 0)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestVariationsLimit(t *testing.T) {
	tests := []struct {
		name     string
		alphabet []rune
		size     int
		count    int
		err      bool
	}{
		{"two symbols at the cap", []rune("01"), 16, MaxVariations, false},
		{"two symbols over the cap", []rune("01"), 17, 0, true},
		{"two symbols overflowing int", []rune("01"), 64, 0, true},
		{"huge size", []rune("01"), 1 << 30, 0, true},
		{"three symbols", []rune("012"), 10, 59049, false},
		{"three symbols over the cap", []rune("012"), 11, 0, true},
		{"single symbol long size", []rune("1"), 4096, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Variations(tt.alphabet, tt.size)
			if tt.err {
				assert.ErrorIs(t, err, ErrTooManyVariations)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, tt.count)
		})
	}
}

func TestCheckEuclid(t *testing.T) {
	tests := []struct {
		onsets int
		steps  int
		ok     bool
	}{
		{3, 8, true},
		{0, 1, true},
		{MaxSteps, MaxSteps, true},
		{0, 0, false},
		{-1, 8, false},
		{9, 8, false},
		{1, MaxSteps + 1, false},
		{1, 1 << 20, false},
	}
	for _, tt := range tests {
		err := CheckEuclid(tt.onsets, tt.steps)
		if tt.ok {
			assert.NoError(t, err, "%d/%d", tt.onsets, tt.steps)
		} else {
			assert.Error(t, err, "%d/%d", tt.onsets, tt.steps)
		}
	}
}

func TestLCM(t *testing.T) {
	l, err := LCM(8, 16, 12)
	require.NoError(t, err)
	assert.Equal(t, 48, l)

	l, err = LCM(8)
	require.NoError(t, err)
	assert.Equal(t, 8, l)

	_, err = LCM(8, 0)
	assert.Error(t, err)

	_, err = LCM[int]()
	assert.Error(t, err)

	assert.Equal(t, 4, GCD(-8, 12))
}

func TestUpsize(t *testing.T) {
	got, err := Upsize("1011", 8)
	require.NoError(t, err)
	assert.Equal(t, "10001010", got)

	got, err = Upsize("101", 12)
	require.NoError(t, err)
	assert.Equal(t, "100000001000", got)

	got, err = Upsize("1011", 4)
	require.NoError(t, err)
	assert.Equal(t, "1011", got)

	_, err = Upsize("1011", 3)
	assert.Error(t, err)

	_, err = Upsize("", 3)
	assert.Error(t, err)
}

func TestUpsizePreservesSymbols(t *testing.T) {
	for _, p := range []string{"1", "10", "110", "1x1x", "10010010"} {
		got, err := Upsize(p, 24)
		require.NoError(t, err)
		require.Len(t, got, 24)
		assert.Equal(t, Onsets(p), Onsets(got), p)
	}
}

func TestPadTailOverwrite(t *testing.T) {
	assert.Equal(t, "00000111", PadLeft("111", 8))
	assert.Equal(t, "1111", PadLeft("1111", 2))

	assert.Equal(t, "11", Tail("0011", 2))
	assert.Equal(t, "0011", Tail("0011", 9))
	assert.Equal(t, "", Tail("0011", 0))

	assert.Equal(t, "10001111", Overwrite("10001000", "111"))
	assert.Equal(t, "111", Overwrite("000", "01111"))
}
