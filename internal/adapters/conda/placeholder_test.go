package conda_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pixi/internal/adapters/conda"
)

const placeholder = "/opt/anaconda1anaconda2anaconda3"

func TestReplacePrefix(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		out, err := conda.ReplacePrefix([]byte("a="+placeholder+"/bin b="+placeholder), placeholder, "/p", false)
		require.NoError(t, err)
		assert.Equal(t, "a=/p/bin b=/p", string(out))
	})

	t.Run("binary keeps length", func(t *testing.T) {
		data := []byte("\x00rpath=" + placeholder + "/lib\x00tail")
		out, err := conda.ReplacePrefix(data, placeholder, "/p", true)
		require.NoError(t, err)

		assert.Len(t, out, len(data))
		want := "\x00rpath=/p/lib" + string(make([]byte, len(placeholder)-2)) + "\x00tail"
		assert.Equal(t, want, string(out))
	})

	t.Run("binary without terminator", func(t *testing.T) {
		out, err := conda.ReplacePrefix([]byte(placeholder), placeholder, "/p", true)
		require.NoError(t, err)
		assert.Equal(t, "/p"+string(make([]byte, len(placeholder)-2)), string(out))
	})

	t.Run("binary prefix too long", func(t *testing.T) {
		_, err := conda.ReplacePrefix([]byte(placeholder), placeholder, "/"+placeholder, true)
		assert.ErrorContains(t, err, "longer than the placeholder")
	})
}
