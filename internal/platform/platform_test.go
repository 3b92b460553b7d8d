package platform

import (
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		goos string
		want Kind
		name string
	}{
		{"linux", KindLinux, "linux"},
		{"darwin", KindMacOS, "mac"},
		{"windows", KindWindows, "windows"},
		{"freebsd", KindUnsupported, "unsupported"},
		{"", KindUnsupported, "unsupported"},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			got := KindOf(tt.goos)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.name, got.String())
		})
	}
}

func TestInfo_ExactlyOneOSFlag(t *testing.T) {
	for _, goos := range []string{"linux", "darwin", "windows"} {
		t.Run(goos, func(t *testing.T) {
			info := &Info{OS: goos}
			count := 0
			for _, flag := range []bool{info.IsLinux(), info.IsMacOS(), info.IsWindows()} {
				if flag {
					count++
				}
			}
			assert.Equal(t, 1, count)
		})
	}

	info := &Info{OS: "plan9"}
	assert.False(t, info.IsLinux() || info.IsMacOS() || info.IsWindows())
	assert.Equal(t, KindUnsupported, info.Kind())
}

func TestInfo_Distro(t *testing.T) {
	assert.Equal(t, "ubuntu 22.04", (&Info{OS: "linux", Platform: "ubuntu", Version: "22.04"}).Distro())
	assert.Equal(t, "arch", (&Info{OS: "linux", Platform: "arch"}).Distro())
	assert.Empty(t, (&Info{OS: "linux"}).Distro())
	assert.Empty(t, (&Info{OS: "darwin", Platform: "ubuntu"}).Distro())
}

func TestRealDetector_Detect(t *testing.T) {
	info, err := NewDetector().Detect(context.Background())
	if runtime.GOARCH != "amd64" && runtime.GOARCH != "arm64" {
		require.Error(t, err)
		return
	}
	require.NoError(t, err)

	assert.Equal(t, runtime.GOOS, info.OS)
	assert.Equal(t, runtime.GOARCH, info.ArchRaw)
	if info.Platform != "" {
		assert.NotEmpty(t, info.Family)
	}
	if runtime.GOOS != "linux" {
		assert.Empty(t, info.Platform)
	}
}

func TestRealDetector_NonLinuxSkipsDistro(t *testing.T) {
	d := &RealDetector{goos: "windows", goarch: "amd64"}
	info, err := d.Detect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, KindWindows, info.Kind())
	assert.Equal(t, "amd64", info.Arch)
	assert.Empty(t, info.Platform)
}

func TestRealDetector_UnsupportedArch(t *testing.T) {
	d := &RealDetector{goos: "linux", goarch: "mips"}
	_, err := d.Detect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported architecture")
}

func TestStaticDetector(t *testing.T) {
	info := &Info{OS: "darwin", Arch: "arm64"}
	got, err := StaticDetector{Info: info}.Detect(context.Background())
	require.NoError(t, err)
	assert.Same(t, info, got)

	_, err = StaticDetector{}.Detect(context.Background())
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	arch, err := normalizeArch("x86_64")
	require.NoError(t, err)
	assert.Equal(t, "amd64", arch)

	arch, err = normalizeArch("aarch64")
	require.NoError(t, err)
	assert.Equal(t, "arm64", arch)

	_, err = normalizeArch("386")
	assert.Error(t, err)

	assert.Equal(t, "ubuntu", normalizePlatform("  Ubuntu "))
	assert.Equal(t, FamilyDebian, mapFamily("Ubuntu"))
	assert.Equal(t, FamilyRHEL, mapFamily("rocky"))
	assert.Equal(t, FamilyUnknown, mapFamily("slackware"))
}

func TestInjectPlatformTable(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	info := &Info{OS: "windows", Arch: "amd64", ArchRaw: "amd64"}
	require.NoError(t, InjectPlatformTable(L, info))

	tests := []struct {
		code string
		want lua.LValue
	}{
		{`return platform.os`, lua.LString("windows")},
		{`return platform.name`, lua.LString("windows")},
		{`return platform.is_windows`, lua.LTrue},
		{`return platform.is_linux`, lua.LFalse},
		{`return platform.is_macos`, lua.LFalse},
		{`return platform.is_amd64`, lua.LTrue},
		{`return platform.distro`, lua.LNil},
		{`return platform.when(platform.is_windows, "C:/VulkanSDK")`, lua.LString("C:/VulkanSDK")},
		{`return platform.when(platform.is_linux, "/opt/vulkan")`, lua.LNil},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			require.NoError(t, L.DoString(tt.code))
			got := L.Get(-1)
			L.Pop(1)
			assert.Equal(t, tt.want.Type(), got.Type())
			assert.Equal(t, tt.want.String(), got.String())
		})
	}
}

func TestInjectPlatformTable_ReadOnly(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	require.NoError(t, InjectPlatformTable(L, &Info{OS: "linux", Arch: "amd64", Platform: "ubuntu", Version: "24.04"}))

	err := L.DoString(`platform.is_windows = true`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read-only")

	require.NoError(t, L.DoString(`return platform.distro`))
	assert.Equal(t, "ubuntu 24.04", L.Get(-1).String())
}
