package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go.trai.ch/pixi/internal/core/domain"
)

func TestOutdatedEnvironments(t *testing.T) {
	t.Parallel()

	o := domain.NewOutdatedEnvironments()
	assert.True(t, o.IsEmpty())
	assert.False(t, o.IsOutdated(0, domain.PlatformLinux64))

	o.MarkConda(1, domain.PlatformOsxArm64)
	o.MarkPypi(0, domain.PlatformLinux64)
	o.MarkPypi(1, domain.PlatformOsxArm64)
	o.DisregardLockedContent.Pypi[0] = struct{}{}

	assert.False(t, o.IsEmpty())
	assert.True(t, o.IsCondaOutdated(1, domain.PlatformOsxArm64))
	assert.False(t, o.IsCondaOutdated(0, domain.PlatformLinux64))
	assert.True(t, o.IsPypiOutdated(0, domain.PlatformLinux64))
	assert.True(t, o.DisregardPypi(0))
	assert.False(t, o.DisregardConda(0))

	assert.Equal(t, []domain.Target{
		{Environment: 0, Platform: domain.PlatformLinux64},
		{Environment: 1, Platform: domain.PlatformOsxArm64},
	}, o.Targets())
}

func TestOutdatedEnvironments_RemovalsAreNotEmpty(t *testing.T) {
	t.Parallel()

	o := domain.NewOutdatedEnvironments()
	o.RemovedEnvironments = []string{"old"}
	assert.False(t, o.IsEmpty())

	o = domain.NewOutdatedEnvironments()
	o.AdditionalPlatforms[0] = domain.NewPlatformSet(domain.PlatformWin64)
	assert.False(t, o.IsEmpty())
	assert.Empty(t, o.Targets())
}

func TestLockFile(t *testing.T) {
	t.Parallel()

	lf := domain.NewLockFile()
	assert.Equal(t, domain.LockFileVersion, lf.Version)

	lf.SetPlatform("default", domain.PlatformLinux64, &domain.LockedPlatform{})
	_, ok := lf.Platform("default", domain.PlatformLinux64)
	assert.True(t, ok)

	clone := lf.Clone()
	clone.SetPlatform("default", domain.PlatformOsx64, &domain.LockedPlatform{})
	clone.RemovePlatform("default", domain.PlatformLinux64)
	_, ok = lf.Platform("default", domain.PlatformOsx64)
	assert.False(t, ok, "clone must not share platform maps")
	_, ok = lf.Platform("default", domain.PlatformLinux64)
	assert.True(t, ok)

	clone.RemoveEnvironment("default")
	_, ok = clone.Environment("default")
	assert.False(t, ok)

	var missing *domain.LockFile
	_, ok = missing.Environment("default")
	assert.False(t, ok)
}

func TestLockedEnvironmentHash(t *testing.T) {
	t.Parallel()

	a := &domain.LockedPlatform{
		Binary: []domain.LockedRecord{binary("zlib", "1.3"), binary("python", "3.12.0")},
		Wheels: []domain.LockedWheel{{
			Package: domain.WheelPackageData{Name: domain.NewPackageName("six"), Version: "1.16.0", Location: "https://x/six.whl"},
		}},
	}
	reordered := &domain.LockedPlatform{
		Binary: []domain.LockedRecord{a.Binary[1], a.Binary[0]},
		Wheels: a.Wheels,
	}
	changed := &domain.LockedPlatform{Binary: []domain.LockedRecord{binary("zlib", "1.3")}, Wheels: a.Wheels}

	assert.Equal(t, domain.LockedEnvironmentHash(a), domain.LockedEnvironmentHash(reordered))
	assert.NotEqual(t, domain.LockedEnvironmentHash(a), domain.LockedEnvironmentHash(changed))
	assert.Equal(t, domain.LockedEnvironmentHash(nil), domain.LockedEnvironmentHash(&domain.LockedPlatform{}))
}

func TestLockFileUsage(t *testing.T) {
	t.Parallel()

	assert.True(t, domain.LockFileUpdate.AllowsUpdate())
	assert.False(t, domain.LockFileLocked.AllowsUpdate())
	assert.True(t, domain.LockFileLocked.ShouldCheck())
	assert.False(t, domain.LockFileFrozen.ShouldCheck())
	assert.Equal(t, "frozen", domain.LockFileFrozen.String())
}
