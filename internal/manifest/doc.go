// Package manifest defines the provisioning recipe format.
//
// A recipe is loaded from a YAML file and describes how to provision an
// environment image: an ordered list of stages, each starting from a base
// image and executing an ordered list of steps. Steps are either generic
// (run a shell command, copy files) or typed provisioning operations
// (system packages, timezone, account creation, pip and conda installs,
// repository clone-and-build, cache cleanup). An export section declares
// the image config stamped on the final artifact, including the entry
// process launched when the image is run.
//
// Example manifest:
//
//	stages:
//	  - from: docker.io/library/ubuntu:16.04
//	    steps:
//	      - packages: {update: true, upgrade: true}
//	      - timezone: America/New_York
//	      - user: {name: lab, sudo: true}
//	export:
//	  entrypoint: [python, /opt/app/main.py]
package manifest
