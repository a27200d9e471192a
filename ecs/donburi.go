package ecs

import (
	"github.com/phanxgames/rescan"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// RenderEventType is the Donburi event type for render records.
var RenderEventType = events.NewEventType[rescan.Render]()

// CommitEvent marks the end of one observed commit.
type CommitEvent struct {
	Records int
}

// CommitEventType is published after the records of each commit.
var CommitEventType = events.NewEventType[CommitEvent]()

type donburiSink struct {
	world   donburi.World
	records int
}

// NewDonburiSink returns consumer callbacks that queue every render record
// on world as a RenderEventType event, followed by one CommitEventType
// event per commit.
func NewDonburiSink(world donburi.World) rescan.Callbacks {
	s := &donburiSink{world: world}
	return rescan.Callbacks{
		OnCommitStart:  s.start,
		OnRender:       s.render,
		OnCommitFinish: s.finish,
	}
}

func (s *donburiSink) start() {
	s.records = 0
}

func (s *donburiSink) render(_ *rescan.Node, renders []rescan.Render) {
	for _, r := range renders {
		RenderEventType.Publish(s.world, r)
		s.records++
	}
}

func (s *donburiSink) finish() {
	CommitEventType.Publish(s.world, CommitEvent{Records: s.records})
}
