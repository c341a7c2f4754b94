package hashfs

import (
	"strings"
	"testing"

	"github.com/oneconcern/datagit/pkg/errors"
	"github.com/oneconcern/datagit/pkg/hashfs/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemeCID(t *testing.T) {
	scheme := MustScheme(SchemeCID)

	k1, err := scheme.Sum([]byte("this is the text"))
	require.NoError(t, err)
	k2, err := scheme.Sum([]byte("this is the text"))
	require.NoError(t, err)
	k3, err := scheme.Sum([]byte("this is the text for another thing"))
	require.NoError(t, err)

	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)
	assert.True(t, strings.HasPrefix(k1, "zdj7W"), k1)
	assert.NoError(t, scheme.Valid(k1))

	err = scheme.Valid("not-a-cid")
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrInvalidKey))
}

func TestSchemeBlake(t *testing.T) {
	scheme := MustScheme(SchemeBlake)

	k, err := scheme.Sum([]byte("sixteentons"))
	require.NoError(t, err)
	assert.Len(t, k, blakeKeyLen)
	assert.NoError(t, scheme.Valid(k))
	assert.Error(t, scheme.Valid(k[:10]))
	assert.Error(t, scheme.Valid(strings.Repeat("z", blakeKeyLen)))
	assert.Equal(t, 0, scheme.PrefixLen())
}

func TestSchemeFor(t *testing.T) {
	s, err := SchemeFor("")
	require.NoError(t, err)
	assert.Equal(t, SchemeCID, s.Name())

	_, err = SchemeFor("md5")
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrUnknownScheme))
	assert.Panics(t, func() { _ = MustScheme("md5") })
}

func TestLinksCodec(t *testing.T) {
	empty, err := MarshalLinks(Links{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"Links":[]}`, string(empty))

	l, err := UnmarshalLinks([]byte(`{"Links":[{"Hash":"a","Size":3},{"Hash":"b","Size":2}]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, l.Keys())
	assert.EqualValues(t, 5, l.Size())

	_, err = UnmarshalLinks([]byte(`{}`))
	assert.True(t, errors.Is(err, status.ErrCorruptedLink))

	_, err = UnmarshalLinks([]byte(`garbage`))
	assert.True(t, errors.Is(err, status.ErrCorruptedLink))
}
