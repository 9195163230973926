// Package modelspec loads declarative model architectures from YAML and
// builds [github.com/cezbloch/layertime/nn] module trees from them.
//
// A spec names the model and lists its layers; sequential layers nest:
//
//	name: mlp
//	layers:
//	  - type: sequential
//	    name: encoder
//	    layers:
//	      - {type: linear, name: fc, in: 4, out: 8}
//	      - {type: relu, name: act}
//	  - {type: linear, name: head, in: 8, out: 2}
//
// [Load] decodes a spec strictly (unknown fields are errors), [Validate]
// checks a raw document against the JSON Schema from [Schema], and
// [Spec.Build] constructs the corresponding [nn.Module] tree.
package modelspec
