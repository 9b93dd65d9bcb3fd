// Package io provides JSON import and export for route requests and routing
// state.
//
// # Route Files
//
// A route file lists multicast routes by key, naming cores by chip position
// and core ID:
//
//	{
//	  "routes": [
//	    {
//	      "key": 1,
//	      "source": {"x": 0, "y": 0, "core": 0},
//	      "sinks": [
//	        {"x": 2, "y": 0, "core": 3},
//	        {"x": 1, "y": 1, "core": 0}
//	      ]
//	    }
//	  ]
//	}
//
// [ReadRoutes] resolves these references against a network and returns
// [traffic.Spec] values; [WriteRoutes] performs the inverse, so a random
// workload can be saved and replayed.
//
// # Routing State
//
// [WriteRouting] dumps every chip's forwarding entries, with ports written by
// name ("east", "core3"), for inspection and diffing:
//
//	{
//	  "chips": [
//	    {
//	      "x": 0, "y": 0, "board": {"x": 0, "y": 0},
//	      "entries": [{"key": 1, "in": "core0", "out": ["east"]}]
//	    }
//	  ]
//	}
//
// Chips without entries are omitted.
package io
