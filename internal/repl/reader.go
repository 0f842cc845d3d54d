package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/peterh/liner"
)

// ErrInterrupted Ctrl-C во время ввода.
var ErrInterrupted = errors.New("interrupted")

// LineReader читает одну строку; io.EOF или ErrInterrupted завершают цикл.
// Отмена ctx должна прерывать ожидание ввода.
type LineReader interface {
	ReadLine(ctx context.Context, prompt string) (string, error)
}

// TerminalReader строка с историей. Во время Prompt терминал в raw-режиме,
// и Ctrl-C приходит как клавиша, а не как SIGINT.
type TerminalReader struct {
	state *liner.State
}

func NewTerminalReader() *TerminalReader {
	state := liner.NewLiner()
	state.SetCtrlCAborts(true)
	return &TerminalReader{state: state}
}

func (r *TerminalReader) ReadLine(ctx context.Context, prompt string) (string, error) {
	if ctx.Err() != nil {
		return "", ErrInterrupted
	}
	line, err := r.state.Prompt(prompt)
	switch {
	case errors.Is(err, liner.ErrPromptAborted):
		return "", ErrInterrupted
	case err != nil:
		return "", err
	}
	if line != "" {
		r.state.AppendHistory(line)
	}
	return line, nil
}

func (r *TerminalReader) Close() error {
	return r.state.Close()
}

type scanResult struct {
	line string
	err  error
}

// StreamReader для неинтерактивного ввода и тестов. Чтение идёт в отдельной
// горутине, чтобы ReadLine мог вернуться по отмене ctx.
type StreamReader struct {
	lines chan scanResult
	out   io.Writer
}

func NewStreamReader(in io.Reader, out io.Writer) *StreamReader {
	r := &StreamReader{lines: make(chan scanResult), out: out}
	go r.scan(in)
	return r
}

func (r *StreamReader) scan(in io.Reader) {
	defer close(r.lines)
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		r.lines <- scanResult{line: scanner.Text()}
	}
	if err := scanner.Err(); err != nil {
		r.lines <- scanResult{err: err}
	}
}

func (r *StreamReader) ReadLine(ctx context.Context, prompt string) (string, error) {
	if r.out != nil {
		fmt.Fprint(r.out, prompt)
	}
	select {
	case <-ctx.Done():
		return "", ErrInterrupted
	case res, ok := <-r.lines:
		if !ok {
			return "", io.EOF
		}
		return res.line, res.err
	}
}
