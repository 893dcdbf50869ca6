// Package expression prepares stage evaluation contexts and evaluates
// expression placeholders embedded in stage configuration documents.
//
// It uses the expr-lang/expr library to evaluate the contents of each
// ${...} placeholder against a context mapping. Placeholders support:
//
//   - Variable access: trigger.buildNumber, parameters.region, scmInfo.branch
//   - Comparisons: ==, !=, <, >, <=, >=
//   - Boolean logic: &&, ||, !
//   - Membership: "value" in array (built-in operator)
//   - Custom functions: has(collection, element), length(collection),
//     toJson(value), parseJson(text), jq(data, query)
//
// Example placeholders:
//
//	${trigger.buildInfo.number}
//	${parameters.environment == "prod" ? "us-east-1" : "us-west-2"}
//	${jq(trigger.payload, ".commits[0].id")}
//
// Evaluation never fails the document as a whole. Each placeholder that
// cannot be resolved is retained as literal text and recorded in a Summary;
// callers decide whether recorded failures escalate.
//
// The evaluator caches compiled placeholder programs for performance.
package expression
