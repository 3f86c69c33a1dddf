//go:build js

package pipeline

import "fmt"

func parquetSupported() bool { return false }

func marshalFramesParquet([]FrameSample) ([]byte, error) {
	return nil, fmt.Errorf("parquet output is not available in the browser build; use format csv")
}
