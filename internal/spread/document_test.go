package spread

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/editions/internal/indesign"
	"github.com/mrlokans/editions/internal/styles"
)

const sampleMarkup = `<html><body>
<div class="Basic-Text-Frame">
  <p class="Titel">De stille<br/>kracht</p>
  <p class="Chapeau"><span class="CharOverride-2">Over   geduld</span> en hoop</p>
  <p class="Broodtekst">Eerste alinea.</p>
  <div><img src="magazine-web-resources/image/kerk%20oud.jpg" alt=""/></div>
  <p class="Onderschrift">De oude kerk</p>
  <p class="ParaOverride-1"><span class="Auteur">Door: Jan Jansen</span></p>
  <p class="Broodtekst">   </p>
  <ul><li class="Broodtekst">Punt <p>genest</p></li></ul>
</div>
</body></html>`

func TestParse(t *testing.T) {
	doc, err := Parse(indesign.Spread{Index: 3, Markup: sampleMarkup})
	require.NoError(t, err)

	require.Len(t, doc.Nodes, 7)
	assert.Equal(t, 3, doc.Spread)

	t.Run("hard breaks preserved", func(t *testing.T) {
		assert.Equal(t, "De stille\nkracht", doc.Nodes[0].Text)
	})

	t.Run("whitespace collapsed and span classes collected", func(t *testing.T) {
		assert.Equal(t, "Over geduld en hoop", doc.Nodes[1].Text)
		assert.Equal(t, []string{"Chapeau", "CharOverride-2"}, doc.Nodes[1].Classes)
	})

	t.Run("image filename unescaped", func(t *testing.T) {
		assert.Equal(t, "kerk oud.jpg", doc.Nodes[3].Image)
	})

	t.Run("empty paragraphs dropped and nested text merged", func(t *testing.T) {
		assert.Equal(t, "Punt genest", doc.Nodes[6].Text)
	})
}

func TestElements(t *testing.T) {
	doc, err := Parse(indesign.Spread{Index: 1, Markup: sampleMarkup})
	require.NoError(t, err)

	analysis := styles.NewClassifier(styles.DefaultTable()).Classify(ClassNames([]*Document{doc}))
	elements := Elements([]*Document{doc}, analysis)

	require.Len(t, elements, 7)
	assert.Equal(t, Title{Pos: Pos{Spread: 1}, Text: "De stille\nkracht"}, elements[0])
	assert.IsType(t, Chapeau{}, elements[1])
	assert.Equal(t, Body{Pos: Pos{Spread: 1}, Kind: KindParagraph, Text: "Eerste alinea."}, elements[2])
	assert.Equal(t, Image{Pos: Pos{Spread: 1}, Filename: "kerk oud.jpg"}, elements[3])
	assert.IsType(t, Caption{}, elements[4])
	// The override class on the paragraph is skipped in favour of the span style
	assert.Equal(t, Author{Pos: Pos{Spread: 1}, Text: "Door: Jan Jansen"}, elements[5])
	for _, e := range elements {
		assert.Equal(t, 1, e.SpreadIndex())
	}
}

func TestParseAll_KeepsSpreadOrder(t *testing.T) {
	spreads := []indesign.Spread{
		{Index: 0, Markup: `<p class="Cover-titel">Omslag</p>`},
		{Index: 1, Markup: `<p class="Titel">Een</p>`},
		{Index: 2, Markup: `<p class="Titel">Twee</p>`},
	}

	docs, errs := ParseAll(context.Background(), spreads, 2)

	assert.Empty(t, errs)
	require.Len(t, docs, 3)
	for i, d := range docs {
		assert.Equal(t, i, d.Spread)
	}
	assert.Equal(t, []string{"Cover-titel", "Titel"}, ClassNames(docs))
}

func TestElements_UnclassifiedText(t *testing.T) {
	doc, err := Parse(indesign.Spread{Index: 0, Markup: `<p class="Zwevend">los</p><p>zonder stijl</p>`})
	require.NoError(t, err)

	elements := Elements([]*Document{doc}, styles.NewClassifier(styles.DefaultTable()).Classify(ClassNames([]*Document{doc})))

	require.Len(t, elements, 2)
	assert.Equal(t, Unclassified{Pos: Pos{Spread: 0}, Class: "Zwevend", Text: "los"}, elements[0])
	assert.Equal(t, Unclassified{Pos: Pos{Spread: 0}, Text: "zonder stijl"}, elements[1])
}
