package syke_test

import (
	"encoding/binary"
	"errors"
	"reflect"
	"testing"

	"github.com/vsariola/syke"
)

type collectSink struct {
	buffer []float32
	closed bool
}

func (s *collectSink) WriteAudio(buffer []float32) error {
	s.buffer = append(s.buffer, buffer...)
	return nil
}

func (s *collectSink) Close() error {
	s.closed = true
	return nil
}

type failingSink struct{}

func (failingSink) WriteAudio(buffer []float32) error { return errors.New("device gone") }
func (failingSink) Close() error                      { return nil }

func TestStream(t *testing.T) {
	src := make([]float32, 5000)
	for i := range src {
		src[i] = float32(i)
	}
	sink := &collectSink{}
	if err := syke.Stream(syke.BufferSource(src), sink); err != nil {
		t.Fatalf("cannot stream: %v", err)
	}
	if !reflect.DeepEqual(sink.buffer, src) {
		t.Fatalf("streamed %v samples, expected the source buffer intact", len(sink.buffer))
	}
	if sink.closed {
		t.Errorf("Stream should not close the sink")
	}
}

func TestStreamPropagatesSinkErrors(t *testing.T) {
	err := syke.Stream(syke.BufferSource(make([]float32, 16)), failingSink{})
	if err == nil {
		t.Fatalf("expected the sink error to propagate")
	}
}

func TestBufferSourceCloseExhausts(t *testing.T) {
	src := syke.BufferSource(make([]float32, 16))
	if err := src.Close(); err != nil {
		t.Fatalf("cannot close buffer source: %v", err)
	}
	sink := &collectSink{}
	if err := syke.Stream(src, sink); err != nil {
		t.Fatalf("cannot stream a closed source: %v", err)
	}
	if len(sink.buffer) != 0 {
		t.Errorf("a closed source should be exhausted, got %v samples", len(sink.buffer))
	}
}

func TestWavHeader(t *testing.T) {
	buffer := []float32{0.5, -0.5, 0.25, -0.25}
	data, err := syke.Wav(buffer, true)
	if err != nil {
		t.Fatalf("cannot encode wav: %v", err)
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Fatalf("missing RIFF/WAVE magic")
	}
	if format := binary.LittleEndian.Uint16(data[20:22]); format != 1 {
		t.Errorf("pcm16 wave format = %v, expected 1", format)
	}
	if channels := binary.LittleEndian.Uint16(data[22:24]); channels != 2 {
		t.Errorf("channels = %v, expected 2", channels)
	}
	if rate := binary.LittleEndian.Uint32(data[24:28]); rate != syke.SampleRate {
		t.Errorf("rate = %v, expected %v", rate, syke.SampleRate)
	}
	if bits := binary.LittleEndian.Uint16(data[34:36]); bits != 16 {
		t.Errorf("bits per sample = %v, expected 16", bits)
	}
	if len(data) != 44+2*len(buffer) {
		t.Errorf("pcm16 file is %v bytes, expected %v", len(data), 44+2*len(buffer))
	}

	data, err = syke.Wav(buffer, false)
	if err != nil {
		t.Fatalf("cannot encode float wav: %v", err)
	}
	if format := binary.LittleEndian.Uint16(data[20:22]); format != 3 {
		t.Errorf("float wave format = %v, expected 3", format)
	}
	if bits := binary.LittleEndian.Uint16(data[34:36]); bits != 32 {
		t.Errorf("float bits per sample = %v, expected 32", bits)
	}
	if string(data[38:42]) != "fact" {
		t.Errorf("float files should carry a fact chunk")
	}
}

func TestRaw(t *testing.T) {
	buffer := []float32{1, -1, 0.5}
	data, err := syke.Raw(buffer, true)
	if err != nil {
		t.Fatalf("cannot encode raw pcm16: %v", err)
	}
	if len(data) != 2*len(buffer) {
		t.Fatalf("raw pcm16 is %v bytes, expected %v", len(data), 2*len(buffer))
	}
	if v := int16(binary.LittleEndian.Uint16(data[0:2])); v != 32767 {
		t.Errorf("first sample = %v, expected full scale 32767", v)
	}
	if v := int16(binary.LittleEndian.Uint16(data[2:4])); v != -32767 {
		t.Errorf("second sample = %v, expected -32767", v)
	}
	data, err = syke.Raw(buffer, false)
	if err != nil {
		t.Fatalf("cannot encode raw float: %v", err)
	}
	if len(data) != 4*len(buffer) {
		t.Fatalf("raw float is %v bytes, expected %v", len(data), 4*len(buffer))
	}
}
