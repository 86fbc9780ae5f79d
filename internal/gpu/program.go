//go:build !nogpu

// Package gpu runs the scene shader as a wgpu/hal compute pipeline.
//
// The pipeline is built once at program creation (environment
// acquisition, WGSL compilation via naga, module/layout/pipeline
// linking) and dispatched once per frame over the full backing store at
// 8x8 workgroups, with the frame uniforms rewritten each dispatch.
package gpu

import (
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"

	"github.com/gogpu/skyline"
)

// fenceTimeout bounds the per-frame wait for GPU completion.
const fenceTimeout = 5 * time.Second

// Program renders the procedural scene on the GPU. It implements the
// skyline.Program interface.
type Program struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.ComputePipeline

	// Frame-sized resources, recreated when the backing store changes.
	uniformBuf hal.Buffer
	pixelBuf   hal.Buffer
	stagingBuf hal.Buffer
	bindGroup  hal.BindGroup
	bufW, bufH uint32

	externalDevice bool // true when using a shared device (don't destroy on Close)
	closed         bool
}

var _ skyline.Program = (*Program)(nil)

// NewProgram acquires a GPU environment (or adopts a shared device from
// provider), compiles the scene shader, and links the compute pipeline.
// All three stages fail fast with the matching skyline sentinel error;
// none of them is retried.
func NewProgram(provider any) (*Program, error) {
	p := &Program{}

	if provider != nil {
		if err := p.adoptDevice(provider); err != nil {
			return nil, err
		}
	} else if err := p.initEnvironment(); err != nil {
		p.releaseEnvironment()
		return nil, err
	}

	spirv, err := compileToSPIRV(sceneShaderSource)
	if err != nil {
		p.releaseEnvironment()
		return nil, err
	}

	if err := p.link(spirv); err != nil {
		p.destroyPipeline()
		p.releaseEnvironment()
		return nil, err
	}

	return p, nil
}

// adoptDevice switches the program to a shared GPU device. The provider
// must expose HalDevice() any and HalQueue() any returning hal types,
// the convention gpucontext providers follow.
func (p *Program) adoptDevice(provider any) error {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return fmt.Errorf("%w: provider does not expose HAL types", skyline.ErrEnvironmentUnsupported)
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return fmt.Errorf("%w: provider HalDevice is not hal.Device", skyline.ErrEnvironmentUnsupported)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return fmt.Errorf("%w: provider HalQueue is not hal.Queue", skyline.ErrEnvironmentUnsupported)
	}

	p.device = device
	p.queue = queue
	p.externalDevice = true
	skyline.Logger().Info("skyline-gpu: using shared GPU device")
	return nil
}

// initEnvironment creates an instance, selects an adapter, and opens a
// device. Any failure here means no accelerated context is available.
func (p *Program) initEnvironment() error {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return fmt.Errorf("%w: vulkan backend not available", skyline.ErrEnvironmentUnsupported)
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("%w: create instance: %w", skyline.ErrEnvironmentUnsupported, err)
	}
	p.instance = instance

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return fmt.Errorf("%w: no GPU adapters found", skyline.ErrEnvironmentUnsupported)
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		return fmt.Errorf("%w: open device: %w", skyline.ErrEnvironmentUnsupported, err)
	}
	p.device = openDev.Device
	p.queue = openDev.Queue

	skyline.Logger().Info("skyline-gpu: device selected", "name", selected.Info.Name)
	return nil
}

// link creates the shader module, bind group layout, pipeline layout,
// and compute pipeline. Failures here are LinkFailures: the compiled
// stages could not be assembled into an executable program.
func (p *Program) link(spirv []uint32) error {
	shader, err := p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "scene",
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return fmt.Errorf("%w: create shader module: %w", skyline.ErrLinkFailure, err)
	}
	p.shader = shader

	bindLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "scene_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
			{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: create bind group layout: %w", skyline.ErrLinkFailure, err)
	}
	p.bindLayout = bindLayout

	pipeLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "scene_pipe_layout", BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("%w: create pipeline layout: %w", skyline.ErrLinkFailure, err)
	}
	p.pipeLayout = pipeLayout

	pipeline, err := p.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label: "scene_pipeline", Layout: p.pipeLayout,
		Compute: hal.ComputeState{Module: p.shader, EntryPoint: "main"},
	})
	if err != nil {
		return fmt.Errorf("%w: create compute pipeline: %w", skyline.ErrLinkFailure, err)
	}
	p.pipeline = pipeline

	return nil
}

// Render dispatches one frame and reads the pixels back into dst.
func (p *Program) Render(dst *skyline.Pixmap, in skyline.FrameInput) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return fmt.Errorf("skyline-gpu: program is closed")
	}
	if dst == nil {
		return fmt.Errorf("skyline-gpu: nil render target")
	}

	w, h := uint32(in.Width), uint32(in.Height) //nolint:gosec // dimensions always fit uint32
	if w == 0 || h == 0 {
		return nil
	}
	if err := p.ensureFrameResources(w, h); err != nil {
		return err
	}

	p.queue.WriteBuffer(p.uniformBuf, 0, packFrameParams(in))

	pixelBufSize := uint64(w*h) * 4

	encoder, err := p.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "scene_encoder"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("scene_frame"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	computePass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "scene_pass"})
	computePass.SetPipeline(p.pipeline)
	computePass.SetBindGroup(0, p.bindGroup, nil)
	computePass.Dispatch((w+7)/8, (h+7)/8, 1)
	computePass.End()

	encoder.CopyBufferToBuffer(p.pixelBuf, p.stagingBuf, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: pixelBufSize},
	})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer p.device.FreeCommandBuffer(cmdBuf)

	fence, err := p.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer p.device.DestroyFence(fence)
	if err := p.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := p.device.Wait(fence, 1, fenceTimeout)
	if err != nil || !fenceOK {
		return fmt.Errorf("wait for GPU: ok=%v err=%w", fenceOK, err)
	}

	// The shader packs r | g<<8 | b<<16 | a<<24 little-endian, which is
	// RGBA byte order — read straight into the pixmap.
	if err := p.queue.ReadBuffer(p.stagingBuf, 0, dst.Data()); err != nil {
		return fmt.Errorf("readback: %w", err)
	}
	return nil
}

// ensureFrameResources (re)creates the frame-sized buffers and bind
// group when the backing store changes. Resizes land between frames, so
// an in-flight dispatch never sees partial-resolution buffers.
func (p *Program) ensureFrameResources(w, h uint32) error {
	if p.bindGroup != nil && p.bufW == w && p.bufH == h {
		return nil
	}
	p.destroyFrameResources()

	pixelBufSize := uint64(w*h) * 4

	uniformBuf, err := p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "scene_params", Size: frameParamsSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create uniform buffer: %w", err)
	}
	p.uniformBuf = uniformBuf

	pixelBuf, err := p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "scene_pixels", Size: pixelBufSize,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("create pixel buffer: %w", err)
	}
	p.pixelBuf = pixelBuf

	stagingBuf, err := p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "scene_staging", Size: pixelBufSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create staging buffer: %w", err)
	}
	p.stagingBuf = stagingBuf

	bindGroup, err := p.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label: "scene_bind", Layout: p.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: uniformBuf.NativeHandle(), Offset: 0, Size: frameParamsSize}},
			{Binding: 1, Resource: gputypes.BufferBinding{Buffer: pixelBuf.NativeHandle(), Offset: 0, Size: pixelBufSize}},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group: %w", err)
	}
	p.bindGroup = bindGroup

	p.bufW, p.bufH = w, h
	skyline.Logger().Debug("skyline-gpu: frame resources created",
		"width", w, "height", h, "pixelBufBytes", pixelBufSize)
	return nil
}

func (p *Program) destroyFrameResources() {
	if p.device == nil {
		return
	}
	if p.bindGroup != nil {
		p.device.DestroyBindGroup(p.bindGroup)
		p.bindGroup = nil
	}
	if p.stagingBuf != nil {
		p.device.DestroyBuffer(p.stagingBuf)
		p.stagingBuf = nil
	}
	if p.pixelBuf != nil {
		p.device.DestroyBuffer(p.pixelBuf)
		p.pixelBuf = nil
	}
	if p.uniformBuf != nil {
		p.device.DestroyBuffer(p.uniformBuf)
		p.uniformBuf = nil
	}
	p.bufW, p.bufH = 0, 0
}

func (p *Program) destroyPipeline() {
	if p.device == nil {
		return
	}
	if p.pipeline != nil {
		p.device.DestroyComputePipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.pipeLayout != nil {
		p.device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.bindLayout != nil {
		p.device.DestroyBindGroupLayout(p.bindLayout)
		p.bindLayout = nil
	}
	if p.shader != nil {
		p.device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}

func (p *Program) releaseEnvironment() {
	if !p.externalDevice {
		if p.device != nil {
			p.device.Destroy()
		}
		if p.instance != nil {
			p.instance.Destroy()
		}
	}
	p.device = nil
	p.instance = nil
	p.queue = nil
	p.externalDevice = false
}

// Close releases all GPU resources. Shared devices are not destroyed —
// the program does not own them.
func (p *Program) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	p.destroyFrameResources()
	p.destroyPipeline()
	p.releaseEnvironment()
}
