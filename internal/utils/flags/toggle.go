package flags

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/pflag"
)

const (
	toggleTrueCanonicalValue               = "true"
	toggleFalseCanonicalValue              = "false"
	toggleFlagTypeConstant                 = "bool"
	toggleParseErrorTemplate               = "invalid toggle value %q"
	toggleArgumentTruePlaceholderConstant  = "<YES|no>"
	toggleArgumentFalsePlaceholderConstant = "<yes|NO>"
	toggleUsageTemplateConstant            = "`%s` %s"
	toggleUsagePlaceholderTemplateConstant = "`%s`"
	longFlagPrefixConstant                 = "--"
	shortFlagPrefixConstant                = "-"
	flagValueSeparatorConstant             = "="
	toggleYesLiteral                       = "yes"
	toggleNoLiteral                        = "no"
	toggleOnLiteral                        = "on"
	toggleOffLiteral                       = "off"
	toggleOneLiteral                       = "1"
	toggleZeroLiteral                      = "0"
	toggleTLiteral                         = "t"
	toggleFLiteral                         = "f"
	toggleYLiteral                         = "y"
	toggleNLiteral                         = "n"
)

var (
	toggleLiterals = map[string]bool{
		toggleTrueCanonicalValue:  true,
		toggleYesLiteral:          true,
		toggleOnLiteral:           true,
		toggleOneLiteral:          true,
		toggleTLiteral:            true,
		toggleYLiteral:            true,
		toggleFalseCanonicalValue: false,
		toggleNoLiteral:           false,
		toggleOffLiteral:          false,
		toggleZeroLiteral:         false,
		toggleFLiteral:            false,
		toggleNLiteral:            false,
	}

	toggleRegistryMutex  sync.RWMutex
	registeredToggleKeys = map[string]struct{}{}
)

// AddToggleFlag registers a boolean flag that also accepts yes/no, on/off, and 1/0 values.
func AddToggleFlag(flagSet *pflag.FlagSet, target *bool, name string, shorthand string, defaultValue bool, usage string) {
	if flagSet == nil || len(name) == 0 {
		return
	}

	value := &toggleFlagValue{currentValue: defaultValue, target: target}
	if target != nil {
		*target = defaultValue
	}
	flagSet.VarP(value, name, shorthand, usage)

	flag := flagSet.Lookup(name)
	flag.NoOptDefVal = toggleTrueCanonicalValue
	flag.Usage = formatToggleUsage(usage, defaultValue)

	toggleRegistryMutex.Lock()
	defer toggleRegistryMutex.Unlock()
	registeredToggleKeys[longFlagPrefixConstant+name] = struct{}{}
	if len(shorthand) > 0 {
		registeredToggleKeys[shortFlagPrefixConstant+shorthand] = struct{}{}
	}
}

// NormalizeToggleArguments joins "--flag value" into "--flag=value" when value is a toggle literal.
// Any other following argument, such as a positional directory, is left in place.
func NormalizeToggleArguments(arguments []string) []string {
	if len(arguments) == 0 {
		return nil
	}

	normalized := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		current := arguments[index]
		if current == longFlagPrefixConstant {
			normalized = append(normalized, arguments[index:]...)
			break
		}

		if isRegisteredToggle(current) && index+1 < len(arguments) {
			if _, isLiteral := lookupToggleLiteral(arguments[index+1]); isLiteral {
				normalized = append(normalized, current+flagValueSeparatorConstant+arguments[index+1])
				index++
				continue
			}
		}

		normalized = append(normalized, current)
	}

	return normalized
}

type toggleFlagValue struct {
	currentValue bool
	target       *bool
}

func (value *toggleFlagValue) Set(rawValue string) error {
	parsedValue, parseError := parseToggleValue(rawValue)
	if parseError != nil {
		return parseError
	}

	value.currentValue = parsedValue
	if value.target != nil {
		*value.target = parsedValue
	}
	return nil
}

func (value *toggleFlagValue) String() string {
	if value != nil && value.currentValue {
		return toggleTrueCanonicalValue
	}
	return toggleFalseCanonicalValue
}

func (value *toggleFlagValue) Type() string {
	return toggleFlagTypeConstant
}

func parseToggleValue(rawValue string) (bool, error) {
	if len(strings.TrimSpace(rawValue)) == 0 {
		return true, nil
	}

	parsedValue, isLiteral := lookupToggleLiteral(rawValue)
	if !isLiteral {
		return false, fmt.Errorf(toggleParseErrorTemplate, rawValue)
	}
	return parsedValue, nil
}

func lookupToggleLiteral(rawValue string) (bool, bool) {
	parsedValue, isLiteral := toggleLiterals[strings.ToLower(strings.TrimSpace(rawValue))]
	return parsedValue, isLiteral
}

func isRegisteredToggle(argument string) bool {
	if strings.Contains(argument, flagValueSeparatorConstant) {
		return false
	}

	toggleRegistryMutex.RLock()
	defer toggleRegistryMutex.RUnlock()
	_, registered := registeredToggleKeys[argument]
	return registered
}

func formatToggleUsage(description string, defaultValue bool) string {
	placeholder := toggleArgumentFalsePlaceholderConstant
	if defaultValue {
		placeholder = toggleArgumentTruePlaceholderConstant
	}

	trimmedDescription := strings.TrimSpace(description)
	if len(trimmedDescription) == 0 {
		return fmt.Sprintf(toggleUsagePlaceholderTemplateConstant, placeholder)
	}
	return fmt.Sprintf(toggleUsageTemplateConstant, placeholder, trimmedDescription)
}
