// Package trace records what coffeeify did and how long it took.
//
// A bundle is one driver span holding a transform pass span, which holds
// one file span per compiled source. File spans end with cache=hit|miss and
// the content digest as extras, which is usually enough to tell why a file
// was or was not recompiled.
//
//	coffeeify bundle --trace=- src/                     # detail level, text
//	coffeeify bundle --trace=run.ndjson --trace-level=debug src/
//	coffeeify bundle --trace-level=detail --trace-mode=ring src/
//
// Tracers are attached to a context with WithTracer. Code that does work
// calls StartSpan on its context and ends the span when done. Nothing is
// recorded when no tracer is attached.
package trace
