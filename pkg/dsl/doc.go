/*
Package dsl provides a fluent Go API for declaring Trestle parameters, commands and cycles.

It is the programmatic counterpart of definition files: the builder produces a
domain.Definitions batch that Engine.Register validates and stores.

Example usage:

	b := dsl.New()

	b.Param("target").Alias("--target", "-t").Required().Persistent()

	b.Command("deploy").
		Do(deploy).
		Needs("target").
		RequiresCommand(dsl.Command("build").Do(build))

	b.Command("smoke").Do(smoke).After("deploy").When("verify")

	b.Cycle("poll").Members("fetch", "check").While("pending").Max(10)

	if err := eng.Register(b.Build()); err != nil {
		// ...
	}
*/
package dsl
