package extractor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsReadable(t *testing.T) {
	hungarian := strings.Repeat("GRÁNIT Bank kivonat, árvíztűrő tükörfúrógép\n", 3)
	assert.True(t, isReadable([]string{hungarian}))

	assert.False(t, isReadable([]string{"too short"}), "trivial output cannot be judged readable")

	garbage := strings.Repeat("", 30)
	assert.False(t, isReadable([]string{garbage}), "identity-encoded fonts decode into private-use runes")
}

func TestPagesRejectsNonPDF(t *testing.T) {
	_, err := Pages([]byte("definitely not a pdf"))
	assert.Error(t, err)

	_, err = FirstPage(nil)
	assert.Error(t, err)
}
