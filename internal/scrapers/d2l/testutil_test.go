package d2l

import (
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func parsePage(t *testing.T, src string) *goquery.Selection {
	t.Helper()
	doc, err := ParseDocument(src)
	require.NoError(t, err)
	return doc
}
