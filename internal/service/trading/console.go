package trading

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"trading-bot/internal/model"
	"trading-bot/internal/utils"
)

// Console вывод для пользователя; в лог не пишет.
type Console struct {
	w         io.Writer
	formatter *utils.Formatter
	red       *color.Color
	green     *color.Color
	bold      *color.Color
}

func NewConsole(w io.Writer) *Console {
	return &Console{
		w:         w,
		formatter: &utils.Formatter{},
		red:       color.New(color.FgRed),
		green:     color.New(color.FgGreen, color.Bold),
		bold:      color.New(color.Bold),
	}
}

func (c *Console) Println(a ...any) {
	fmt.Fprintln(c.w, a...)
}

func (c *Console) Error(format string, a ...any) {
	c.red.Fprintf(c.w, format+"\n", a...)
}

func (c *Console) Success(format string, a ...any) {
	c.green.Fprintf(c.w, format+"\n", a...)
}

// Table две колонки: поле и значение, поля по алфавиту.
func (c *Console) Table(title string, rec model.Record) {
	c.bold.Fprintln(c.w, title)

	table := tablewriter.NewWriter(c.w)
	table.SetHeader([]string{"Field", "Value"})
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	for _, k := range rec.Keys() {
		table.Append([]string{k, c.formatter.FormatValue(rec[k])})
	}
	table.Render()
}
