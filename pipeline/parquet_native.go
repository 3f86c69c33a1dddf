//go:build !js

package pipeline

import (
	parquetbuffer "github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

type frameParquetRow struct {
	Frame        int64   `parquet:"name=frame, type=INT64"`
	TimeS        float64 `parquet:"name=time_s, type=DOUBLE"`
	LeftContact  bool    `parquet:"name=left_contact, type=BOOLEAN"`
	RightContact bool    `parquet:"name=right_contact, type=BOOLEAN"`
	LeftHip      float64 `parquet:"name=left_hip_deg, type=DOUBLE"`
	LeftKnee     float64 `parquet:"name=left_knee_deg, type=DOUBLE"`
	LeftAnkle    float64 `parquet:"name=left_ankle_deg, type=DOUBLE"`
	RightHip     float64 `parquet:"name=right_hip_deg, type=DOUBLE"`
	RightKnee    float64 `parquet:"name=right_knee_deg, type=DOUBLE"`
	RightAnkle   float64 `parquet:"name=right_ankle_deg, type=DOUBLE"`
	LeftPhase    string  `parquet:"name=left_phase, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	RightPhase   string  `parquet:"name=right_phase, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	LeftCycle    int64   `parquet:"name=left_cycle, type=INT64"`
	RightCycle   int64   `parquet:"name=right_cycle, type=INT64"`
}

func parquetSupported() bool { return true }

func marshalFramesParquet(samples []FrameSample) ([]byte, error) {
	fw := parquetbuffer.NewBufferFile()
	pw, err := writer.NewParquetWriter(fw, new(frameParquetRow), 4)
	if err != nil {
		return nil, err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, s := range samples {
		row := frameParquetRow{
			Frame:        int64(s.Frame),
			TimeS:        s.TimeS,
			LeftContact:  s.LeftContact,
			RightContact: s.RightContact,
			LeftHip:      s.LeftHip,
			LeftKnee:     s.LeftKnee,
			LeftAnkle:    s.LeftAnkle,
			RightHip:     s.RightHip,
			RightKnee:    s.RightKnee,
			RightAnkle:   s.RightAnkle,
			LeftPhase:    s.LeftPhase,
			RightPhase:   s.RightPhase,
			LeftCycle:    int64(s.LeftCycle),
			RightCycle:   int64(s.RightCycle),
		}
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			return nil, err
		}
	}
	if err := pw.WriteStop(); err != nil {
		return nil, err
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return append([]byte(nil), fw.Bytes()...), nil
}
