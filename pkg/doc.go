// Package pkg provides the core libraries for modelir, the intermediate
// representation layer of a neural-network model converter.
//
// # Overview
//
// Framework parsers translate a trained model into an IR document; framework
// emitters read that document back and generate code or files for another
// framework. The packages here cover everything between the two:
//
//  1. [attr] and [tensor] - typed attribute values and tensor payloads
//  2. [graph] - the generic node registry and graph engine
//  3. [ir] - IR documents, their binary and text encodings, and IR graphs
//  4. [weights] - the per-node weight archive written next to a document
//  5. [render/nodelink] - Graphviz diagrams of IR graphs
//
// # Architecture
//
// The typical data flow:
//
//	framework parser
//	       |
//	  [ir.Builder] (records + weights)
//	       |
//	  model.json / model.pb / model.weights
//	       |
//	  [ir.Load] -> [ir.Graph] (build, rebuild, flatten scopes)
//	       |
//	framework emitter
//
// # Quick Start
//
//	g, err := ir.Load(ctx, "model.pb")
//	if err != nil {
//	    return err
//	}
//	g.FlattenScopes()
//	for _, name := range g.TopologicalOrder() {
//	    n, _ := g.Node(name)
//	    fmt.Println(n.Type(), n.Name())
//	}
package pkg
