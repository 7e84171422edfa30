package utils

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

const (
	gitExecutableNameConstant                 = "git"
	processRunnerNotConfiguredMessageConstant = "process runner not configured"
	gitTerminalPromptEnvironmentNameConstant  = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptDisabledValueConstant    = "0"
	environmentAssignmentSeparatorConstant    = "="
)

// CommandOptions describes a git invocation.
type CommandOptions struct {
	Arguments        []string
	WorkingDirectory string
}

// CommandResult captures the observable results of executing a command.
type CommandResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// ExternalProcessRunner represents the ability to run an executable with options.
type ExternalProcessRunner interface {
	Run(executionContext context.Context, executableName string, options CommandOptions) (CommandResult, error)
}

// CommandExecutor routes git invocations to a process runner.
type CommandExecutor struct {
	processRunner ExternalProcessRunner
}

// OSExternalProcessRunner executes commands using os/exec.
type OSExternalProcessRunner struct{}

// NewCommandExecutor builds a CommandExecutor around the provided runner.
func NewCommandExecutor(processRunner ExternalProcessRunner) *CommandExecutor {
	return &CommandExecutor{processRunner: processRunner}
}

// NewOSExternalProcessRunner creates a runner backed by os/exec.
func NewOSExternalProcessRunner() *OSExternalProcessRunner {
	return &OSExternalProcessRunner{}
}

// ExecuteGitCommand runs git with the provided options.
func (executor *CommandExecutor) ExecuteGitCommand(executionContext context.Context, options CommandOptions) (CommandResult, error) {
	if executor == nil || executor.processRunner == nil {
		return CommandResult{}, errors.New(processRunnerNotConfiguredMessageConstant)
	}

	return executor.processRunner.Run(executionContext, gitExecutableNameConstant, options)
}

// Run executes the command and converts non-zero exits into results rather than errors.
// Interactive credential prompts are disabled so unattended fetches fail instead of blocking.
func (runner *OSExternalProcessRunner) Run(executionContext context.Context, executableName string, options CommandOptions) (CommandResult, error) {
	commandArguments := append([]string{}, options.Arguments...)
	executable := exec.CommandContext(executionContext, executableName, commandArguments...)

	if len(options.WorkingDirectory) > 0 {
		executable.Dir = options.WorkingDirectory
	}
	executable.Env = append(executable.Environ(), gitTerminalPromptEnvironmentNameConstant+environmentAssignmentSeparatorConstant+gitTerminalPromptDisabledValueConstant)

	var standardOutputBuffer bytes.Buffer
	var standardErrorBuffer bytes.Buffer
	executable.Stdout = &standardOutputBuffer
	executable.Stderr = &standardErrorBuffer

	runError := executable.Run()
	if runError != nil {
		exitError := &exec.ExitError{}
		if errors.As(runError, &exitError) {
			return CommandResult{
				StandardOutput: standardOutputBuffer.String(),
				StandardError:  standardErrorBuffer.String(),
				ExitCode:       exitError.ExitCode(),
			}, nil
		}
		return CommandResult{}, runError
	}

	return CommandResult{
		StandardOutput: standardOutputBuffer.String(),
		StandardError:  standardErrorBuffer.String(),
	}, nil
}
