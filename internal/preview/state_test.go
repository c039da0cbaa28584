package preview

import (
	"errors"
	"testing"

	"mediaproxy/internal/media/format"
)

func TestResolveMode(t *testing.T) {
	cases := []struct {
		name string
		src  Source
		want Mode
	}{
		{
			name: "supported pair with local path",
			src:  Source{HasLocalPath: true, Validated: true, Container: format.ContainerMP4, Codec: format.CodecH264},
			want: ModePlayback,
		},
		{
			name: "webm av1",
			src:  Source{HasLocalPath: true, Validated: true, Container: format.ContainerWebM, Codec: format.CodecAV1},
			want: ModePlayback,
		},
		{
			name: "mov hevc",
			src:  Source{HasLocalPath: true, Validated: true, Container: format.ContainerMOV, Codec: format.CodecHEVC},
			want: ModePlayback,
		},
		{
			name: "unsupported container regardless of codec",
			src:  Source{HasLocalPath: true, Validated: true, Container: format.ContainerMXF, Codec: format.CodecH264},
			want: ModeIdentify,
		},
		{
			name: "unsupported codec in supported container",
			src:  Source{HasLocalPath: true, Validated: true, Container: format.ContainerMOV, Codec: format.CodecProRes},
			want: ModeIdentify,
		},
		{
			name: "no local path regardless of format",
			src:  Source{HasLocalPath: false, Validated: true, Container: format.ContainerMP4, Codec: format.CodecH264},
			want: ModeIdentify,
		},
		{
			name: "awaiting validation",
			src:  Source{HasLocalPath: true, Validated: false, Container: format.ContainerMP4, Codec: format.CodecH264},
			want: ModeIdentify,
		},
		{
			name: "unknown everything",
			src:  Source{HasLocalPath: true, Validated: true},
			want: ModeIdentify,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ResolveMode(tc.src); got != tc.want {
				t.Fatalf("ResolveMode(%+v) = %v, want %v", tc.src, got, tc.want)
			}
		})
	}
}

func TestTransition(t *testing.T) {
	cases := []struct {
		name    string
		current State
		event   Event
		want    State
		wantErr bool
	}{
		{"load from idle", StateIdle, EventSourceAssigned, StateSourceLoaded, false},
		{"reload while running", StateJobRunning, EventSourceAssigned, StateSourceLoaded, false},
		{"reload after complete", StateJobComplete, EventSourceAssigned, StateSourceLoaded, false},
		{"job starts on loaded source", StateSourceLoaded, EventJobStarted, StateJobRunning, false},
		{"second job after completion", StateJobComplete, EventJobStarted, StateJobRunning, false},
		{"job cannot start while idle", StateIdle, EventJobStarted, StateIdle, true},
		{"job cannot start twice", StateJobRunning, EventJobStarted, StateJobRunning, true},
		{"job finishes while running", StateJobRunning, EventJobFinished, StateJobComplete, false},
		{"finish without running job", StateSourceLoaded, EventJobFinished, StateSourceLoaded, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Transition(tc.current, tc.event)
			if tc.wantErr {
				var invalid *ErrInvalidTransition
				if !errors.As(err, &invalid) {
					t.Fatalf("expected ErrInvalidTransition, got %v", err)
				}
				if got != tc.current {
					t.Fatalf("failed transition must not move state, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Transition: %v", err)
			}
			if got != tc.want {
				t.Fatalf("Transition(%v, %v) = %v, want %v", tc.current, tc.event, got, tc.want)
			}
		})
	}
}
