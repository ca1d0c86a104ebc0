package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"indexcore/internal/storage"
)

func TestAddFieldAssignsSequentialOrdinals(t *testing.T) {
	s := New()
	title, err := s.AddTextField("title", TextOptions{Indexed: true, Tokenized: true, Stored: true})
	require.NoError(t, err)
	rank, err := s.AddU32Field("rank", U32Options{Indexed: true, Fast: true})
	require.NoError(t, err)

	require.Equal(t, Field(0), title)
	require.Equal(t, Field(1), rank)
	require.Equal(t, 2, s.NumFields())
	require.Equal(t, []Field{title, rank}, s.Fields())

	f, ok := s.GetField("rank")
	require.True(t, ok)
	require.Equal(t, rank, f)

	name, err := s.FieldName(rank)
	require.NoError(t, err)
	require.Equal(t, "rank", name)
}

func TestAddFieldDuplicateNameRejected(t *testing.T) {
	s := New()
	_, err := s.AddTextField("title", TextOptions{Indexed: true})
	require.NoError(t, err)

	_, err = s.AddTextField("title", TextOptions{Indexed: true})
	require.ErrorIs(t, err, ErrFieldExists)

	_, err = s.AddU32Field("title", U32Options{Indexed: true})
	require.ErrorIs(t, err, ErrFieldExists)
}

func TestFieldOptionsWrongKindRejected(t *testing.T) {
	s := New()
	title, err := s.AddTextField("title", TextOptions{Indexed: true, Stored: true})
	require.NoError(t, err)
	rank, err := s.AddU32Field("rank", U32Options{Indexed: true, Fast: true})
	require.NoError(t, err)

	_, err = s.U32FieldOptions(title)
	require.ErrorIs(t, err, ErrWrongKind)

	_, err = s.TextFieldOptions(rank)
	require.ErrorIs(t, err, ErrWrongKind)

	opts, err := s.TextFieldOptions(title)
	require.NoError(t, err)
	require.True(t, opts.Stored)

	u32opts, err := s.U32FieldOptions(rank)
	require.NoError(t, err)
	require.True(t, u32opts.Fast)
}

func TestFieldLookupUnknownOrdinal(t *testing.T) {
	s := New()
	_, err := s.AddTextField("title", TextOptions{})
	require.NoError(t, err)

	_, err = s.FieldName(Field(5))
	require.ErrorIs(t, err, ErrFieldNotFound)

	_, err = s.TextFieldOptions(Field(5))
	require.ErrorIs(t, err, ErrFieldNotFound)

	_, err = s.U32FieldOptions(Field(5))
	require.ErrorIs(t, err, ErrFieldNotFound)
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	s := New()
	_, err := s.AddTextField("title", TextOptions{Indexed: true, Tokenized: true, Stored: true})
	require.NoError(t, err)
	_, err = s.AddU32Field("rank", U32Options{Indexed: true, Fast: true})
	require.NoError(t, err)

	data, err := s.Marshal()
	require.NoError(t, err)

	got, err := Unmarshal(data)
	require.NoError(t, err)
	require.Equal(t, s.NumFields(), got.NumFields())

	f, ok := got.GetField("rank")
	require.True(t, ok)
	opts, err := got.U32FieldOptions(f)
	require.NoError(t, err)
	require.True(t, opts.Fast)
}

func TestUnmarshalDetectsCorruptedPayload(t *testing.T) {
	s := New()
	_, err := s.AddTextField("title", TextOptions{Indexed: true})
	require.NoError(t, err)

	data, err := s.Marshal()
	require.NoError(t, err)

	var w schemaWire
	require.NoError(t, json.Unmarshal(data, &w))
	w.Fields[0].Name = "tampered"
	tampered, err := json.Marshal(&w)
	require.NoError(t, err)

	_, err = Unmarshal(tampered)
	require.ErrorIs(t, err, ErrSchemaCorrupt)
}

func TestUnmarshalDetectsMalformedChecksum(t *testing.T) {
	s := New()
	_, err := s.AddTextField("title", TextOptions{Indexed: true})
	require.NoError(t, err)

	data, err := s.Marshal()
	require.NoError(t, err)

	var w schemaWire
	require.NoError(t, json.Unmarshal(data, &w))
	w.Checksum = storage.Checksum("not-a-checksum")
	malformed, err := json.Marshal(&w)
	require.NoError(t, err)

	_, err = Unmarshal(malformed)
	require.ErrorIs(t, err, storage.ErrInvalidChecksum)
}

func TestUnmarshalRejectsMalformedJSON(t *testing.T) {
	_, err := Unmarshal([]byte("{not json"))
	require.Error(t, err)
}
