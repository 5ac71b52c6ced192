package web

const indexHTML = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>ABC Audio</title>
    <style>
        body { font-family: sans-serif; max-width: 600px; margin: 50px auto; padding: 20px; }
        h1 { color: #333; }
        .info { background: #f0f0f0; padding: 15px; border-radius: 5px; margin: 20px 0; white-space: pre; }
        button { background: #007bff; color: white; border: none; padding: 10px 20px; border-radius: 5px; cursor: pointer; margin: 4px; }
        button:hover { background: #0056b3; }
        input { padding: 8px; margin: 5px; width: 60%; }
    </style>
</head>
<body>
    <h1>ABC Audio</h1>
    <div class="info" id="status">Loading...</div>
    <div>
        <button onclick="post('/api/toggle/music')">Music</button>
        <button onclick="post('/api/toggle/sfx')">Sound effects</button>
        <button onclick="post('/api/toggle/voice')">Voice</button>
    </div>
    <div>
        <button onclick="post('/api/bgm/play')">Play melody</button>
        <button onclick="post('/api/bgm/pause')">Pause melody</button>
    </div>
    <div>
        <button onclick="post('/api/sfx/click')">Click</button>
        <button onclick="post('/api/sfx/success')">Success</button>
        <button onclick="post('/api/sfx/correct')">Correct</button>
        <button onclick="post('/api/sfx/wrong')">Wrong</button>
    </div>
    <div>
        <input type="text" id="text" value="A is for Apple">
        <button onclick="speak()">Speak</button>
    </div>
    <script>
        function render(data) {
            const p = data.preferences;
            let status = 'music=' + p.music + ' sfx=' + p.sfx + ' voice=' + p.voice + '\n';
            status += 'audio ' + data.unlock + ' (device ' + data.device + ', t=' + data.deviceTime.toFixed(2) + 's)\n';
            status += 'melody ' + (data.melody.armed ? 'playing' : 'stopped') + ' at note ' + data.melody.index;
            if (data.speaking) {
                status += '\nspeaking: ' + data.speaking.text;
            }
            document.getElementById('status').textContent = status;
        }

        async function loadStatus() {
            const res = await fetch('/api/status');
            render(await res.json());
        }

        async function post(path, body) {
            const res = await fetch(path, {
                method: 'POST',
                headers: {'Content-Type': 'application/json'},
                body: body ? JSON.stringify(body) : undefined
            });
            if (res.ok) {
                render(await res.json());
            }
        }

        function speak() {
            post('/api/speak', {text: document.getElementById('text').value});
        }

        loadStatus();
        setInterval(loadStatus, 1000);
    </script>
</body>
</html>`
