package term

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEqual(t *testing.T) {
	a := FromText(0, "cat")
	b := FromText(0, "cat")
	c := FromText(1, "cat")
	d := FromText(0, "dog")

	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c))
	require.False(t, a.Equal(d))
}

func TestLessOrdersByFieldThenPayload(t *testing.T) {
	lowField := FromText(0, "zebra")
	highField := FromText(1, "apple")
	require.True(t, lowField.Less(highField))
	require.False(t, highField.Less(lowField))

	apple := FromText(2, "apple")
	mango := FromText(2, "mango")
	require.True(t, apple.Less(mango))
	require.False(t, mango.Less(apple))
	require.False(t, apple.Less(apple))
}

func TestFromU32BigEndianPayload(t *testing.T) {
	tm := FromU32(3, 1)
	require.Equal(t, []byte{0, 0, 0, 1}, tm.Payload)

	small := FromU32(3, 1)
	big := FromU32(3, 256)
	require.True(t, small.Less(big))
}

func TestKeyMatchesLessOrdering(t *testing.T) {
	terms := []Term{
		FromText(1, "a"),
		FromText(0, "z"),
		FromText(1, "b"),
	}
	for i := range terms {
		for j := range terms {
			if terms[i].Less(terms[j]) {
				require.Less(t, terms[i].Key(), terms[j].Key())
			}
		}
	}
}
