// Command dietguide は食事プランをターミナルから取得するCLIです。
// セッションはストア（デフォルトはSQLiteファイル）に保存され、次回の起動時に復元されます。
package main

import (
	"fmt"
	"log/slog"
	"os"
)

func main() {
	root, closeApp := newRootCmd(loadApp)
	err := root.Execute()
	if cerr := closeApp(); cerr != nil {
		slog.Error("failed to close store", "error", cerr)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", userMessage(err))
		os.Exit(1)
	}
}
