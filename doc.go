// Package rescan observes a host's retained render tree and reports which
// nodes mounted, re-rendered or went away on every commit. An optional
// pipeline turns those reports into fading outlines drawn over an
// [Ebitengine] screen.
//
// # Quick start
//
// The host owns a [Hook] and fires it on every commit. An [Engine]
// subscribes to the hook and hands [Render] records to registered
// consumers:
//
//	hook := rescan.NewHook()
//	engine := rescan.NewEngine(hook)
//	engine.RegisterInstance(rescan.IsComposite, rescan.Callbacks{
//		OnRender: func(n *rescan.Node, renders []rescan.Render) {
//			// ...
//		},
//	})
//
// Hosts without a hook pass nil to [NewEngine] and call [Engine.Commit]
// themselves.
//
// # Host tree
//
// Every element of the tree is a [Node] linked by Parent, Child and Sibling.
// A node and its Alternate are two generations of the same logical node;
// the engine gives both the same id. The host prepares the next generation
// with [Node.NextGeneration] and sets [Flags] to describe the work done.
//
// # Outlines
//
// A [Pipeline] collects renders of composite nodes, resolves the on-screen
// rectangles of their nearest output elements through a [GeometryObserver]
// and animates one outline per node on a [Canvas]. An [Overlay] draws the
// latest [Frame]:
//
//	pipeline := rescan.NewPipeline(engine, rescan.NewFuncObserver(measure), rescan.OutlineConfig{})
//	go pipeline.Run(ctx)
//	overlay := rescan.NewOverlay(pipeline)
//
//	func (g *Game) Update() error        { return g.overlay.Update() }
//	func (g *Game) Draw(s *ebiten.Image) { g.drawScene(s); g.overlay.Draw(s) }
//
// Set OutlineConfig.OffThread to animate on a worker goroutine instead of
// the game loop.
//
// # Configuration
//
// [LoadConfigFile] reads engine and pipeline settings from YAML. Durations
// use Go syntax ("32ms").
//
// # Debug mode
//
// [WithDebug] prints per-commit traversal time and record counts to stderr
// and warns about very deep trees.
//
// [Ebitengine]: https://ebitengine.org
package rescan
