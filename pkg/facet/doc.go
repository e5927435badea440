// Package facet synthesizes objects at run time from a set of contracts
// (Go interface types), explicitly registered method handlers and a fallback
// object. It is meant for test doubles, partial overrides and ad-hoc mixins.
//
// # Resolution
//
// Every call names a Method, the identity of one method declared by one
// contract. The object resolves it once, in this order, and caches the result:
//
//  1. The first HandlerEntry whose Matcher accepts the method. User entries
//     come first in registration order; built-in entries for the reserved
//     methods are always appended last.
//  2. The default body the declaring contract supplies (WithDefault). The body
//     receives the synthesized object as inv.Self, so calls it makes to other
//     methods are dispatched again.
//  3. A method of the fallback object with the same name and a compatible
//     type, called reflectively.
//
// If nothing applies the call fails with a *ResolutionFailure; other methods
// keep working.
//
// # Building
//
//	obj, err := facet.NewBuilder().
//		AddContract(facet.ContractOf[Greeter]()).
//		HandleMethod("Greet", func(inv *facet.Invocation) (any, error) {
//			return "hello " + inv.Arg(0).(string), nil
//		}).
//		SetFallback(&englishGreeter{}).
//		Build()
//
//	out, err := obj.Invoke("Greet", "Ada")
//
// Build runs preprocessors (merge fallback contracts, add the Synthesized base
// contract, inject built-ins) and validators (reserved-method protection,
// duplicate contracts, user validators) and fails fast with a
// *ConfigurationError; nothing half-built is returned.
//
// # Reserved methods
//
// Equals, HashCode, String and Descriptor form the Synthesized contract. User
// entries that could match them are rejected unless SkipReservedValidation is
// set. Descriptor returns the live descriptor, which NewBuilderFrom accepts to
// synthesize a new object on top of an existing configuration.
//
// # Typed access
//
// Go cannot add methods to a type at run time, so an Object is a dispatch
// record. CastTo returns a contract-bound View; Func builds a typed function
// for one method with reflect.MakeFunc; As returns a real T when T's contract
// registered an Adapter.
//
// # Failures
//
// Errors returned by handlers reach the caller wrapped in a
// *HandlerExecutionFailure whose cause is retained. Panics are treated as
// fatal and propagate untouched.
package facet
