package output

import (
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	mdtable "github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
)

// newMarkdownConverter creates a converter that keeps table structure,
// with minimal cell padding.
func newMarkdownConverter() *converter.Converter {
	return converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			mdtable.NewTablePlugin(
				mdtable.WithCellPaddingBehavior(mdtable.CellPaddingBehaviorMinimal),
			),
		),
	)
}

// ToMarkdown converts rendered table HTML to a Markdown table.
func ToMarkdown(conv *converter.Converter, htmlContent string) (string, error) {
	return conv.ConvertString(htmlContent)
}
