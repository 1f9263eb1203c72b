package policy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/weldsafe/internal/core/domain"
)

func assertBlockContract(t *testing.T, text string, blocks []domain.Block) {
	t.Helper()

	require.GreaterOrEqual(t, len(blocks), 2)
	assert.Equal(t, SummaryHeading, blocks[len(blocks)-1].Heading)
	for _, b := range blocks {
		assert.NotEmpty(t, b.Heading)
		assert.GreaterOrEqual(t, len(b.Lines), 1, b.Heading)
		assert.LessOrEqual(t, len(b.Lines), 3, b.Heading)
	}

	parts := strings.Split(text, "\n\n")
	require.Len(t, parts, len(blocks))
	for i, p := range parts {
		first := strings.SplitN(p, "\n", 2)[0]
		assert.Equal(t, "<b>"+blocks[i].Heading+"</b>", first)
	}
}

func TestLayout_ShortAnswerUnchanged(t *testing.T) {
	l := Layout{Threshold: 330}
	text, blocks := l.Apply("  Відкривай вентиль плавно, без ривків.  ")
	assert.Equal(t, "Відкривай вентиль плавно, без ривків.", text)
	assert.Nil(t, blocks)
}

func TestLayout_LongParagraphSplit(t *testing.T) {
	l := Layout{Threshold: 330}
	sentence := "Перед роботою перевір шланги, редуктор і вентиль балона на витік газу. "
	long := strings.Repeat(sentence, 10)
	require.Greater(t, visibleLen(long), 330)

	text, blocks := l.Apply(long)

	assertBlockContract(t, text, blocks)
	assert.Equal(t, firstHeading, blocks[0].Heading)
	assert.Equal(t, firstHeading+continuationSuffix, blocks[1].Heading)
	for _, b := range blocks {
		for _, line := range b.Lines {
			assert.LessOrEqual(t, visibleLen(line), 165)
		}
	}
}

func TestLayout_TitledBlocksKeepHeadings(t *testing.T) {
	l := Layout{Threshold: 330}
	in := "<b>Захист очей</b>\nПрацюй у щитку DIN 9-13.\n\n" +
		"<b>Швидкий підсумок</b>\nЩиток береже очі.\n\n" +
		"<b>Вентиляція</b>\nУвімкни витяжку."

	text, blocks := l.Apply(in)

	assertBlockContract(t, text, blocks)
	assert.Equal(t, []string{"Захист очей", "Вентиляція", SummaryHeading}, headings(blocks))
	assert.Equal(t, []string{"Щиток береже очі."}, blocks[2].Lines)
}

func TestLayout_SummaryAddedFromFirstLine(t *testing.T) {
	l := Layout{Threshold: 330}
	in := "<b>Газ</b>\nВідкривай вентиль плавно.\n\nПотім перевір тиск."

	text, blocks := l.Apply(in)

	assertBlockContract(t, text, blocks)
	assert.Equal(t, []string{"Газ", nextHeading, SummaryHeading}, headings(blocks))
	assert.Equal(t, []string{"Відкривай вентиль плавно."}, blocks[2].Lines)
}

func TestLayout_HeadingOnItsOwnParagraph(t *testing.T) {
	l := Layout{Threshold: 330}
	in := "<b>Газ</b>\n\nВідкривай вентиль плавно.\n\n<b>Швидкий підсумок:</b>\n\nПлавно і без ривків."

	_, blocks := l.Apply(in)

	require.Len(t, blocks, 2)
	assert.Equal(t, domain.Block{Heading: "Газ", Lines: []string{"Відкривай вентиль плавно."}}, blocks[0])
	assert.Equal(t, SummaryHeading, blocks[1].Heading)
	assert.Equal(t, []string{"Плавно і без ривків."}, blocks[1].Lines)
}

func TestLayout_LongSummaryStaysLast(t *testing.T) {
	l := Layout{Threshold: 330}
	in := "<b>Газ</b>\nрядок\n\n<b>Швидкий підсумок</b>\nодин\nдва\nтри\nчотири\nп'ять"

	text, blocks := l.Apply(in)

	assertBlockContract(t, text, blocks)
	assert.Equal(t, []string{"Газ", detailsHeading, SummaryHeading}, headings(blocks))
	assert.Equal(t, []string{"три", "чотири", "п'ять"}, blocks[2].Lines)
}

func TestSentences(t *testing.T) {
	got := sentences("Дивись п. 5.3 норми. Товщина 0.5 мм! <b>Увага</b> далі")
	assert.Equal(t, []string{"Дивись п. 5.3 норми.", "Товщина 0.5 мм!", "<b>Увага</b> далі"}, got)
}

func headings(blocks []domain.Block) []string {
	out := make([]string, len(blocks))
	for i, b := range blocks {
		out[i] = b.Heading
	}
	return out
}

func TestLayout_BoldOnlyParagraphsBecomeBody(t *testing.T) {
	l := Layout{Threshold: 330}
	first := strings.TrimSpace(strings.Repeat("Перекрий газ і вимкни апарат. ", 8))
	second := strings.TrimSpace(strings.Repeat("Охолоди опік водою. ", 7))
	in := "<b>" + first + "</b>\n\n<b>" + second + "</b>"
	require.Greater(t, visibleLen(in), 330)

	text, blocks := l.Apply(in)

	assertBlockContract(t, text, blocks)
	assert.Equal(t, []string{firstHeading, nextHeading, SummaryHeading}, headings(blocks))
	assert.Contains(t, StripTags(text), "Охолоди опік водою.")
}

func TestLayout_TrailingHeadingKeptAsBody(t *testing.T) {
	l := Layout{Threshold: 330}
	in := "<b>Газ</b>\nВідкривай вентиль плавно.\n\n<b>Після роботи закрий балон</b>"

	text, blocks := l.Apply(in)

	assertBlockContract(t, text, blocks)
	assert.Equal(t, []string{"Газ", nextHeading, SummaryHeading}, headings(blocks))
	assert.Equal(t, []string{"<b>Після роботи закрий балон</b>"}, blocks[1].Lines)
}
