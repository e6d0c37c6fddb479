package main

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"github.com/yosuke-furukawa/json5/encoding/json5"

	"github.com/viam-labs/qwiic-otos/otos"
)

// Profile is a sensor configuration loaded from a JSON5 file and applied
// after connecting. Absent fields leave the corresponding setting alone.
type Profile struct {
	LinearUnit    string       `json:"linear_unit"`
	AngularUnit   string       `json:"angular_unit"`
	LinearScalar  *float64     `json:"linear_scalar"`
	AngularScalar *float64     `json:"angular_scalar"`
	Offset        *otos.Pose2D `json:"offset"`
}

// ReadProfile loads a profile from path.
func ReadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading profile")
	}
	var profile Profile
	if err := json5.Unmarshal(data, &profile); err != nil {
		return nil, errors.Wrapf(err, "parsing profile %q", path)
	}
	return &profile, nil
}

// Apply pushes the profile onto the device. Units are applied first so the
// offset is interpreted in the profile's own units.
func (p *Profile) Apply(ctx context.Context, dev *otos.Device) error {
	switch p.LinearUnit {
	case "":
	case "meters":
		dev.SetLinearUnit(otos.LinearUnitMeters)
	case "inches":
		dev.SetLinearUnit(otos.LinearUnitInches)
	default:
		return errors.Errorf("unknown linear unit %q", p.LinearUnit)
	}
	switch p.AngularUnit {
	case "":
	case "radians":
		dev.SetAngularUnit(otos.AngularUnitRadians)
	case "degrees":
		dev.SetAngularUnit(otos.AngularUnitDegrees)
	default:
		return errors.Errorf("unknown angular unit %q", p.AngularUnit)
	}
	if p.LinearScalar != nil {
		if err := dev.SetLinearScalar(ctx, *p.LinearScalar); err != nil {
			return err
		}
	}
	if p.AngularScalar != nil {
		if err := dev.SetAngularScalar(ctx, *p.AngularScalar); err != nil {
			return err
		}
	}
	if p.Offset != nil {
		if err := dev.SetOffset(ctx, *p.Offset); err != nil {
			return err
		}
	}
	return nil
}
