package gltfio

import (
	"encoding/json"

	raybox "github.com/kesh3d/raybox"
	"github.com/qmuntal/gltf"
)

const (
	extClearcoat    = "KHR_materials_clearcoat"
	extTransmission = "KHR_materials_transmission"
	extVolume       = "KHR_materials_volume"
	extSpecular     = "KHR_materials_specular"
	extIOR          = "KHR_materials_ior"
	extSheen        = "KHR_materials_sheen"
	extAnisotropy   = "KHR_materials_anisotropy"
	extIridescence  = "KHR_materials_iridescence"
	extEmissiveStr  = "KHR_materials_emissive_strength"
	extUnlit        = "KHR_materials_unlit"
)

// loadMaterials maps every glTF material's pbrMetallicRoughness block
// plus the PBR extension channels the core's Material sum type
// carries (clearcoat, transmission, volume, specular, sheen,
// anisotropy, iridescence, emissive strength) onto one *Material.
// KHR_materials_unlit switches Kind to MaterialUnlit; everything else
// stays MaterialPBR, since the core has no specular-glossiness or
// texture-transform variant to map those extensions onto.
func (l *Loader) loadMaterials() error {
	for i, gm := range l.doc.Materials {
		mat := raybox.NewPBRMaterial()

		if pbr := gm.PBRMetallicRoughness; pbr != nil {
			mat.Albedo = raybox.Color{
				R: float64(pbr.BaseColorFactor[0]), G: float64(pbr.BaseColorFactor[1]),
				B: float64(pbr.BaseColorFactor[2]), A: float64(pbr.BaseColorFactor[3]),
			}
			mat.Opacity = float64(pbr.BaseColorFactor[3])
			if pbr.MetallicFactor != nil {
				mat.Metalness = float64(*pbr.MetallicFactor)
			}
			if pbr.RoughnessFactor != nil {
				mat.Roughness = float64(*pbr.RoughnessFactor)
			}
			if pbr.BaseColorTexture != nil {
				mat.BaseColorMap = l.texByIx[pbr.BaseColorTexture.Index]
			}
			if pbr.MetallicRoughnessTexture != nil {
				mat.MetallicRoughnessMap = l.texByIx[pbr.MetallicRoughnessTexture.Index]
			}
		}

		if gm.NormalTexture != nil {
			mat.NormalMap = l.texByIx[gm.NormalTexture.Index]
			if gm.NormalTexture.Scale != nil {
				mat.NormalScale = float64(*gm.NormalTexture.Scale)
			}
		}
		if gm.OcclusionTexture != nil {
			mat.OcclusionMap = l.texByIx[gm.OcclusionTexture.Index]
			if gm.OcclusionTexture.Strength != nil {
				mat.OcclusionStrength = float64(*gm.OcclusionTexture.Strength)
			}
		}

		mat.Emissive = raybox.Color{R: float64(gm.EmissiveFactor[0]), G: float64(gm.EmissiveFactor[1]), B: float64(gm.EmissiveFactor[2]), A: 1}
		mat.EmissiveIntensity = 1
		if gm.EmissiveTexture != nil {
			mat.EmissiveMap = l.texByIx[gm.EmissiveTexture.Index]
		}

		switch gm.AlphaMode {
		case gltf.AlphaMask:
			mat.AlphaMode = raybox.AlphaMask
			if gm.AlphaCutoff != nil {
				mat.AlphaCutoff = float64(*gm.AlphaCutoff)
			}
		case gltf.AlphaBlend:
			mat.AlphaMode = raybox.AlphaBlend
		default:
			mat.AlphaMode = raybox.AlphaOpaque
		}
		mat.DoubleSided = gm.DoubleSided

		l.applyExtensions(mat, gm.Extensions)

		l.matByIx[i] = mat
		l.progress(i+1, len(l.doc.Materials), "materials")
	}
	return nil
}

func (l *Loader) applyExtensions(mat *raybox.Material, ext gltf.Extensions) {
	if _, ok := ext[extUnlit]; ok {
		mat.Kind = raybox.MaterialUnlit
	}

	if raw, ok := ext[extClearcoat]; ok {
		var data struct {
			ClearcoatFactor          float64 `json:"clearcoatFactor"`
			ClearcoatRoughnessFactor float64 `json:"clearcoatRoughnessFactor"`
		}
		if unmarshal(raw, &data) {
			mat.Clearcoat.Factor = data.ClearcoatFactor
			mat.Clearcoat.RoughnessFactor = data.ClearcoatRoughnessFactor
		}
	}

	if raw, ok := ext[extTransmission]; ok {
		var data struct {
			TransmissionFactor float64 `json:"transmissionFactor"`
		}
		if unmarshal(raw, &data) {
			mat.Transmission.Factor = data.TransmissionFactor
		}
	}

	if raw, ok := ext[extVolume]; ok {
		var data struct {
			ThicknessFactor     float64    `json:"thicknessFactor"`
			AttenuationDistance float64    `json:"attenuationDistance"`
			AttenuationColor    [3]float64 `json:"attenuationColor"`
		}
		if unmarshal(raw, &data) {
			mat.Transmission.ThicknessFactor = data.ThicknessFactor
			mat.Transmission.AttenuationDistance = data.AttenuationDistance
			if data.AttenuationColor != [3]float64{} {
				mat.Transmission.AttenuationColor = raybox.Color{R: data.AttenuationColor[0], G: data.AttenuationColor[1], B: data.AttenuationColor[2], A: 1}
			} else {
				mat.Transmission.AttenuationColor = raybox.White
			}
		}
	}

	if raw, ok := ext[extSpecular]; ok {
		var data struct {
			SpecularFactor      float64    `json:"specularFactor"`
			SpecularColorFactor [3]float64 `json:"specularColorFactor"`
		}
		if unmarshal(raw, &data) {
			mat.Specular2.Factor = data.SpecularFactor
			mat.Specular2.Color = raybox.Color{R: data.SpecularColorFactor[0], G: data.SpecularColorFactor[1], B: data.SpecularColorFactor[2], A: 1}
		}
	}

	if raw, ok := ext[extIOR]; ok {
		var data struct {
			IOR float64 `json:"ior"`
		}
		if unmarshal(raw, &data) {
			mat.IOR = data.IOR
		}
	}

	if raw, ok := ext[extSheen]; ok {
		var data struct {
			SheenColorFactor     [3]float64 `json:"sheenColorFactor"`
			SheenRoughnessFactor float64    `json:"sheenRoughnessFactor"`
		}
		if unmarshal(raw, &data) {
			mat.Sheen.ColorFactor = raybox.Color{R: data.SheenColorFactor[0], G: data.SheenColorFactor[1], B: data.SheenColorFactor[2], A: 1}
			mat.Sheen.RoughnessFactor = data.SheenRoughnessFactor
		}
	}

	if raw, ok := ext[extAnisotropy]; ok {
		var data struct {
			AnisotropyStrength float64 `json:"anisotropyStrength"`
			AnisotropyRotation float64 `json:"anisotropyRotation"`
		}
		if unmarshal(raw, &data) {
			mat.Anisotropy.Strength = data.AnisotropyStrength
			mat.Anisotropy.Rotation = data.AnisotropyRotation
		}
	}

	if raw, ok := ext[extIridescence]; ok {
		var data struct {
			IridescenceFactor           float64 `json:"iridescenceFactor"`
			IridescenceIor              float64 `json:"iridescenceIor"`
			IridescenceThicknessMinimum float64 `json:"iridescenceThicknessMinimum"`
			IridescenceThicknessMaximum float64 `json:"iridescenceThicknessMaximum"`
		}
		if unmarshal(raw, &data) {
			mat.Iridescence.Factor = data.IridescenceFactor
			mat.Iridescence.IOR = data.IridescenceIor
			mat.Iridescence.ThicknessMinimum = data.IridescenceThicknessMinimum
			mat.Iridescence.ThicknessMaximum = data.IridescenceThicknessMaximum
		}
	}

	if raw, ok := ext[extEmissiveStr]; ok {
		var data struct {
			EmissiveStrength float64 `json:"emissiveStrength"`
		}
		if unmarshal(raw, &data) {
			mat.EmissiveIntensity = data.EmissiveStrength
		}
	}
}

func unmarshal(raw json.RawMessage, out interface{}) bool {
	return json.Unmarshal(raw, out) == nil
}
