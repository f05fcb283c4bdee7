package model_test

import (
	"testing"

	"github.com/okian/attune/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSyncedEventGap(t *testing.T) {
	Convey("Given a synced event", t, func() {
		Convey("When visual leads audio", func() {
			ev := model.SyncedEvent{
				Visual: model.VisualSample{TS: 100},
				Audio:  model.AudioSample{TS: 160},
			}
			So(ev.Gap(), ShouldEqual, 60)
		})

		Convey("When audio leads visual", func() {
			ev := model.SyncedEvent{
				Visual: model.VisualSample{TS: 160},
				Audio:  model.AudioSample{TS: 100},
			}
			So(ev.Gap(), ShouldEqual, 60)
		})

		Convey("When both sides coincide", func() {
			ev := model.SyncedEvent{
				Visual: model.VisualSample{TS: 100},
				Audio:  model.AudioSample{TS: 100},
			}
			So(ev.Gap(), ShouldEqual, 0)
		})
	})
}

func TestSampleTimestampAccessors(t *testing.T) {
	Convey("Given visual and audio samples", t, func() {
		v := model.VisualSample{TS: 42}
		a := model.AudioSample{TS: 43}

		Convey("Then Timestamp exposes the capture time", func() {
			So(v.Timestamp(), ShouldEqual, 42)
			So(a.Timestamp(), ShouldEqual, 43)
		})
	})
}
