/*
Package dsl provides a fluent builder for constructing journeys in Go code.

It is the programmatic counterpart of journey definition files: states are
declared in call order, transitions are attached to the state they leave, and
Build runs the same validation as every other entry point.

Example usage:

	j, err := dsl.New("Onboarding Flow").
		State("Awareness").Describe("First touch").
		Go("Consideration", 0.4).Via("paid_search").On("ad_click").Brief("Search ad").
		State("Consideration").Dwell(5).
		Go("Conversion", 0.3).Via("email").
		State("Conversion").
		Build()
*/
package dsl
