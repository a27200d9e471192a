// Package ecs bridges rescan render records into a [Donburi] world.
//
// [NewDonburiSink] returns engine callbacks that publish every record as a
// typed event. Systems subscribe to [RenderEventType] and drain the queue
// with ProcessEvents, usually once per tick.
//
// Usage:
//
//	sink := ecs.NewDonburiSink(world)
//	engine.RegisterInstance(rescan.IsComposite, sink)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
