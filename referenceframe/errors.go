package referenceframe

import "github.com/pkg/errors"

// ErrNoModelInformation is used when there is no model information.
var ErrNoModelInformation = errors.New("no model information")

// NewUnsupportedJointTypeError returns an error indicating that a given joint type is not supported.
func NewUnsupportedJointTypeError(jointType string) error {
	return errors.Errorf("unsupported joint type detected: %q", jointType)
}

// NewLinkNotFoundError returns an error indicating that a joint references a link which does not exist.
func NewLinkNotFoundError(joint, link string) error {
	return errors.Errorf("joint %q references unknown link %q", joint, link)
}

// NewRootLinkError returns an error for a link tree that does not have exactly one root.
func NewRootLinkError(roots []string) error {
	return errors.Errorf("expected exactly one root link, found %d: %v", len(roots), roots)
}

// NewDuplicateNameError returns an error for a repeated link or joint name.
func NewDuplicateNameError(kind, name string) error {
	return errors.Errorf("duplicate %s name %q", kind, name)
}
