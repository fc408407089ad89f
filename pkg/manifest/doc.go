/*
Package manifest loads Trestle definitions from YAML, JSON or TOML files.

A manifest lists parameters, commands and cycles. Every reference field accepts either a
name or an inline definition:

	parameters:
	  - name: target
	    type: text
	    aliases: [--target]
	    persistent: true

	commands:
	  - name: deploy
	    action: deploy            # looked up in the action registry
	    required_params: [target]
	    require_before:
	      - name: build           # inline command
	        exec: {command: make, args: [build]}
	    goes_after: lint          # a single name is accepted as a list

	cycles:
	  - name: poll
	    members: [fetch, check]
	    while: pending
	    max_iterations: 10

	include: [shared.yaml]      # loaded first, relative to this file

Commands name an action from a registry.Registry or declare exec, which runs a local
program through the process adapter with the command's arguments exported as
TRESTLE_ARG_<NAME> environment variables.
*/
package manifest
