package sqlinline

const QInsertGeneratedAsset = `--sql af8ae060-dd91-4810-8e7e-e60dfcdaad8c
insert into generated_assets (id, scene_id, storage_key, width, height, duration, fps, prompt)
values ($1, $2, $3, $4, $5, $6, $7, $8)
on conflict (id) do nothing;
`
