package cmd

import (
	"io"
	"time"
)

var timeNow = time.Now

func readAll(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	return string(data), err
}
