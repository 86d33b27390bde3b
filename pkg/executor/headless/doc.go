// Package headless replays scripted scenarios against experiment variants
// without a display.
//
// A scenario is a YAML file naming one or more variants (glob patterns) and a
// list of steps: placements, taps, Next and Yes/No presses. Each matched
// variant runs in a fresh session driven through the same dispatcher the
// WebSocket server uses, with the in-process scene standing in for the
// renderer. Expectations can be attached to any step and to the end of the
// run:
//
//	name: hidden wall lets taps through
//	variants: ["*-probe"]
//	steps:
//	  - action: select
//	  - action: tap
//	    target: cube-1
//	    expect: {tally: {cube-1: 0, cube-2: 1}}
//	  - action: next
//	  - action: next
//	  - action: tap
//	    target: cube-1
//	expect:
//	  phase: anchor_placed
//	  stage: 2
//	  tally: {cube-1: 1}
//
// Runs produce execution.json, summary.md and metrics.json in the artifact
// directory, so CI can check experiment scripts before they reach a headset.
package headless
